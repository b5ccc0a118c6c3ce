package engine

import "fmt"

// FailureCode categorizes engine execution failures.
//
// Enumeration exhaustion (timeout, explored-edge budget) is deliberately NOT
// a failure; those are reported as result flags. A Failure means the run
// produced no usable result at all.
type FailureCode string

const (
	// FailureForced indicates a configuration-hook-forced failure used to
	// exercise fallback and rollback paths in live traffic.
	FailureForced FailureCode = "FORCED_FAILURE"

	// FailureInternal indicates a genuine internal fault (a panic recovered
	// at the runner boundary).
	FailureInternal FailureCode = "INTERNAL_FAULT"
)

// Failure is the engine's distinguishable execution failure. It is returned
// alongside a nil result instead of being thrown; the canary router catches
// it and falls back to the baseline output.
type Failure struct {
	Code    FailureCode
	Version string
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: engine %s: %s", f.Code, f.Version, f.Message)
}
