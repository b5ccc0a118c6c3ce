package canary

import "time"

// Thresholds are the rollback trip wires, all in basis points, plus the
// window size they are evaluated over.
type Thresholds struct {
	WindowRuns                 int
	MaxErrorRateBps            int64
	MaxTimeoutRateBps          int64
	MaxLimitedRateBps          int64
	MinNonNegativeDeltaRateBps int64
}

// ThresholdsFrom extracts the rollback thresholds of a rollout config.
func ThresholdsFrom(cfg RolloutConfig) Thresholds {
	return Thresholds{
		WindowRuns:                 cfg.RollbackWindowRuns,
		MaxErrorRateBps:            cfg.MaxErrorRateBps,
		MaxTimeoutRateBps:          cfg.MaxTimeoutRateBps,
		MaxLimitedRateBps:          cfg.MaxLimitedRateBps,
		MinNonNegativeDeltaRateBps: cfg.MinNonNegativeDeltaRateBps,
	}
}

// Controller owns RollbackState transitions. It is the ONLY code that
// mutates the latch or the sample window.
type Controller struct {
	state *RollbackState
}

// NewController wraps an existing state (typically loaded from the store).
func NewController(state *RollbackState) *Controller {
	return &Controller{state: state}
}

// State returns the owned state for persistence and snapshots.
func (c *Controller) State() *RollbackState { return c.state }

// Reset clears the latch and the evidence window. Operator override only:
// a flapping candidate must not silently re-enable itself, so nothing else
// ever clears an active latch.
func (c *Controller) Reset() {
	*c.state = RollbackState{Window: []Sample{}}
}

// UpdateState ingests one run's outcome and re-evaluates the latch.
//
// If rollback is already active, no sample is appended - the window is
// frozen at the point of activation for root-cause stability - and the
// current summary is returned. Otherwise the sample (nil means the
// candidate did not run this request) is appended, the window trimmed to
// WindowRuns, rates recomputed, and thresholds evaluated in fixed
// precedence: error, timeout, limited, then non-negative-delta-below-min.
// The first violated dimension sets the reason code and activates the
// latch, stamping activated_at and activating_run_id.
func (c *Controller) UpdateState(sample *Sample, th Thresholds, recordedAt time.Time, runID string) WindowStats {
	if c.state.Active {
		return ComputeWindowStats(c.state.Window)
	}

	if sample != nil {
		c.state.Window = append(c.state.Window, *sample)
		if th.WindowRuns > 0 && len(c.state.Window) > th.WindowRuns {
			c.state.Window = c.state.Window[len(c.state.Window)-th.WindowRuns:]
		}
	}

	stats := ComputeWindowStats(c.state.Window)

	if reason := violatedThreshold(stats, th); reason != "" {
		c.state.Active = true
		c.state.ReasonCode = reason
		c.state.ActivatedAt = recordedAt
		c.state.ActivatingRunID = runID
	}

	return stats
}

// violatedThreshold returns the reason code of the first threshold crossed,
// in precedence order, or "" when the window is healthy.
func violatedThreshold(stats WindowStats, th Thresholds) string {
	if stats.ErrorRateBps > th.MaxErrorRateBps {
		return ReasonErrorRateExceeded
	}
	if stats.TimeoutRateBps > th.MaxTimeoutRateBps {
		return ReasonTimeoutRateExceeded
	}
	if stats.LimitedRateBps > th.MaxLimitedRateBps {
		return ReasonLimitedRateExceeded
	}
	if stats.NonNegativeDeltaRateBps < th.MinNonNegativeDeltaRateBps {
		return ReasonNegativeDeltaRateLow
	}
	return ""
}

// ComputeWindowStats recomputes failure rates over a window.
//
// An empty window yields zero failure rates but a non-negative-delta rate
// of 10000: "no evidence of harm" defaults to passing, not failing.
func ComputeWindowStats(window []Sample) WindowStats {
	total := len(window)
	if total == 0 {
		return WindowStats{NonNegativeDeltaRateBps: 10000}
	}

	var errors, timeouts, limited, nonNegative int64
	for _, s := range window {
		if s.Error {
			errors++
		}
		if s.Timeout {
			timeouts++
		}
		if s.Limited {
			limited++
		}
		if s.NonNegativeDelta {
			nonNegative++
		}
	}

	n := int64(total)
	return WindowStats{
		Total:                   total,
		ErrorRateBps:            10000 * errors / n,
		TimeoutRateBps:          10000 * timeouts / n,
		LimitedRateBps:          10000 * limited / n,
		NonNegativeDeltaRateBps: 10000 * nonNegative / n,
	}
}
