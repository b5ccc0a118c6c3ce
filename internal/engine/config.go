package engine

// Unbounded disables the explored-edge budget. Note that zero is NOT
// unbounded: a budget of 0 exhausts on the first explored edge, which tests
// rely on to exercise the limited path.
const Unbounded int64 = -1

// Engine versions. The baseline is the trusted implementation; the
// candidate is the one under progressive rollout.
const (
	VersionBaseline  = "v1"
	VersionCandidate = "v2"
)

// Config is the immutable per-version engine configuration.
// Two named instances exist per run: baseline and candidate.
type Config struct {
	// Version names the engine build this config drives ("v1" or "v2").
	Version string

	// MinCycleLength and MaxCycleLength bound accepted cycle sizes
	// (number of intents in the ring). A config with min > max yields an
	// empty enumeration without faulting.
	MinCycleLength int
	MaxCycleLength int

	// MaxCyclesExplored is the hard budget on edges explored during DFS.
	// Unbounded (-1) disables the budget.
	MaxCyclesExplored int64

	// TimeoutMs is the cooperative wall-clock budget for enumeration.
	// Values <= 0 disable the budget.
	TimeoutMs int64

	// Diagnostics enables verbose per-run debug logging in callers.
	Diagnostics bool
}

// BaselineConfig returns the fixed configuration of the trusted v1 engine:
// 2-3 party cycles, no diagnostics, unbounded budgets.
func BaselineConfig() Config {
	return Config{
		Version:           VersionBaseline,
		MinCycleLength:    2,
		MaxCycleLength:    3,
		MaxCyclesExplored: Unbounded,
		TimeoutMs:         0,
	}
}
