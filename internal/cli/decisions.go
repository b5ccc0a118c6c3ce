package cli

import (
	"github.com/spf13/cobra"
)

// NewDecisionsCommand creates the decisions command: list the canary
// decision audit history, newest last.
func NewDecisionsCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "List canary decision records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecisions(cmd, opts, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show (0 = all)")
	return cmd
}

func runDecisions(cmd *cobra.Command, opts *RootOptions, limit int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	decisions, err := st.ReadDecisions(cmd.Context(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading decisions", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(decisions)
	}

	if len(decisions) == 0 {
		out.Textf("no decisions recorded")
		return nil
	}
	for _, d := range decisions {
		switch {
		case d.SkippedReason != "":
			out.Textf("%s  skipped (%s)  primary=%s", d.RunID, d.SkippedReason, d.PrimaryVersion)
		case d.FallbackReason != "":
			out.Textf("%s  mode=%s fallback (%s)  primary=%s", d.RunID, d.Mode, d.FallbackReason, d.PrimaryVersion)
		default:
			out.Textf("%s  mode=%s selected  primary=%s", d.RunID, d.Mode, d.PrimaryVersion)
		}
		if opts.Verbose && d.DeltaKnown {
			out.Textf("    delta_score_sum_scaled=%d", d.DeltaScoreSumScaled)
		}
	}
	return nil
}
