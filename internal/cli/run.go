package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/ringswap/internal/harness"
	"github.com/roach88/ringswap/internal/service"
)

// NewRunCommand creates the run command: execute one matching run from a
// request YAML file against the configured database.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <request.yaml>",
		Short: "Execute one matching run",
		Long: `Execute one matching run from a request file.

The request file declares intents, asset values, edge overrides, the run
timestamp, and the requesting actor. Routing, shadowing, and rollback
behavior come from the configuration, not the request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, args[0])
		},
	}
	return cmd
}

func runRun(cmd *cobra.Command, opts *RootOptions, requestPath string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	step, err := harness.LoadRunStep(requestPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading run request", err)
	}
	req, err := step.Request()
	if err != nil {
		return WrapExitError(ExitCommandError, "loading run request", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := service.New(cmd.Context(), cfg, st, newLogger(cfg, opts), nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "initializing service", err)
	}

	result, err := svc.Execute(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return WrapExitError(ExitFailure, "rejected run request", err)
		}
		return WrapExitError(ExitCommandError, "executing run", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(result)
	}

	out.Textf("run %s: %d proposal(s) selected", result.RunID, len(result.Proposals))
	for _, p := range result.Proposals {
		out.Textf("  %s  cycle=%s  score=%d  confidence=%.2f",
			p.ID, p.CycleKey, p.ScoreScaled, p.Confidence())
	}
	out.Textf("stats: intents=%d edges=%d cycles=%d timed_out=%v limited=%v",
		result.Stats.IntentsActive, result.Stats.Edges,
		result.Stats.CandidateCycles, result.Stats.TimedOut, result.Stats.Limited)
	if opts.Verbose {
		out.Textf("duration: %dms", result.Stats.DurationMs)
	}
	return nil
}
