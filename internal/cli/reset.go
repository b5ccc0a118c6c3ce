package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ringswap/internal/service"
)

// NewResetCommand creates the reset command: clear the rollback latch for
// the configured scope. Operator override; the latch never clears itself.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the rollback latch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, opts)
		},
	}
}

func runReset(cmd *cobra.Command, opts *RootOptions) error {
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
	wasActive := state.Active
	reason := state.ReasonCode

	svc, err := service.New(cmd.Context(), cfg, st, newLogger(cfg, opts), nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "initializing service", err)
	}
	if err := svc.ResetRollback(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "resetting rollback state", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(map[string]any{"scope": cfg.Scope, "was_active": wasActive})
	}
	if wasActive {
		out.Textf("rollback latch cleared for scope %s (was active: %s)", cfg.Scope, reason)
	} else {
		out.Textf("rollback latch already inactive for scope %s; window cleared", cfg.Scope)
	}
	return nil
}
