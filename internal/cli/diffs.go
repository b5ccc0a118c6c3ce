package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewDiffsCommand creates the diffs command: list shadow diff records,
// newest last.
func NewDiffsCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "diffs",
		Short: "List shadow diff records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiffs(cmd, opts, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show (0 = all)")
	return cmd
}

func runDiffs(cmd *cobra.Command, opts *RootOptions, limit int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	diffs, err := st.ReadShadowDiffs(cmd.Context(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading shadow diffs", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(diffs)
	}

	if len(diffs) == 0 {
		out.Textf("no shadow diffs recorded")
		return nil
	}
	for _, d := range diffs {
		if d.Error != "" {
			out.Textf("%s  shadow error: %s", d.RunID, d.Error)
			continue
		}
		out.Textf("%s  baseline=%d candidate=%d delta=%d", d.RunID,
			d.BaselineSelected, d.CandidateSelected, d.DeltaScoreSumScaled)
		if opts.Verbose {
			out.Textf("    both=[%s] baseline_only=[%s] candidate_only=[%s]",
				strings.Join(d.CycleKeysBoth, " "),
				strings.Join(d.CycleKeysBaselineOnly, " "),
				strings.Join(d.CycleKeysCandidateOnly, " "))
		}
	}
	return nil
}
