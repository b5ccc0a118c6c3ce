package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ringswap/internal/harness"
)

// NewTestCommand creates the test command: run a scenario file against a
// fresh in-memory stack and print its canonical snapshot. Useful for
// authoring golden files and for smoke-testing config changes.
func NewTestCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <scenario.yaml>",
		Short: "Execute a scenario file and print its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, opts, args[0])
		},
	}
}

func runTest(cmd *cobra.Command, opts *RootOptions, scenarioPath string) error {
	scenario, err := harness.LoadScenario(scenarioPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "running scenario", err)
	}

	snapshot, err := result.Snapshot()
	if err != nil {
		return WrapExitError(ExitFailure, "rendering snapshot", err)
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(append(snapshot, '\n')); err != nil {
		return WrapExitError(ExitCommandError, "writing snapshot", err)
	}
	return nil
}
