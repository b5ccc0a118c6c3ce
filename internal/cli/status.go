package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ringswap/internal/canary"
)

// NewStatusCommand creates the status command: report the rollback latch
// and window health for the configured scope.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show rollback latch and window health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}
}

type statusReport struct {
	Scope       string               `json:"scope"`
	Rollback    canary.RollbackState `json:"rollback"`
	WindowStats canary.WindowStats   `json:"window_stats"`
	LastRunSeq  int64                `json:"last_run_seq"`
}

func runStatus(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.LoadRollbackState(cmd.Context(), cfg.Scope)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading rollback state", err)
	}
	seq, err := st.MaxRunSequence(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "reading run sequence", err)
	}

	report := statusReport{
		Scope:       cfg.Scope,
		Rollback:    state,
		WindowStats: canary.ComputeWindowStats(state.Window),
		LastRunSeq:  seq,
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(report)
	}

	out.Textf("scope: %s", report.Scope)
	out.Textf("last run sequence: %d", report.LastRunSeq)
	if state.Active {
		out.Textf("rollback: ACTIVE (%s, activated by %s at %s)",
			state.ReasonCode, state.ActivatingRunID, state.ActivatedAt.Format("2006-01-02T15:04:05Z07:00"))
	} else {
		out.Textf("rollback: inactive")
	}
	out.Textf("window: %d sample(s), error=%dbps timeout=%dbps limited=%dbps non_negative_delta=%dbps",
		report.WindowStats.Total,
		report.WindowStats.ErrorRateBps,
		report.WindowStats.TimeoutRateBps,
		report.WindowStats.LimitedRateBps,
		report.WindowStats.NonNegativeDeltaRateBps)
	return nil
}
