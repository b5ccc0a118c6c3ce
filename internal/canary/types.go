package canary

import (
	"time"
)

// Mode is the capacity in which the candidate engine participates.
type Mode string

const (
	// ModePrimary: full candidate rollout with per-request safety fallback
	// to the baseline.
	ModePrimary Mode = "primary"

	// ModeCanary: percentage rollout of the candidate while the baseline
	// remains the default primary.
	ModeCanary Mode = "canary"
)

// Skip reasons recorded when the candidate does not participate.
const (
	SkipDisabled        = "canary_disabled"
	SkipRollbackActive  = "rollback_active"
	SkipRolloutExcluded = "rollout_excluded"
)

// Fallback reasons recorded when the candidate ran but the baseline stayed
// (or became) primary.
const (
	FallbackPrimaryError = "v2_error"
	FallbackCanaryError  = "canary_error"
	FallbackTimeout      = "v2_fallback_timeout"
	FallbackLimited      = "v2_fallback_limited"
)

// Rollback latch reason codes, in threshold precedence order.
const (
	ReasonErrorRateExceeded    = "canary_error_rate_exceeded"
	ReasonTimeoutRateExceeded  = "canary_timeout_rate_exceeded"
	ReasonLimitedRateExceeded  = "canary_limited_rate_exceeded"
	ReasonNegativeDeltaRateLow = "canary_negative_delta_rate_exceeded"
)

// RolloutConfig drives one rollout mode (primary or canary). Two instances
// exist per run. All rates and percentages are in basis points (1/100 of a
// percent), so 10000 means 100%.
//
// ForceError and ForceBucketV2 are test hooks; forced errors are treated as
// genuine candidate failures downstream.
type RolloutConfig struct {
	Enabled       bool
	RolloutBps    int64
	Salt          string
	ForceError    bool
	ForceBucketV2 bool

	// Primary-mode fallback policy: when set, a candidate run that hits the
	// corresponding safety trigger yields the baseline as primary.
	FallbackOnTimeout bool
	FallbackOnLimited bool

	// RollbackReset clears the rollback latch before the run reads state.
	// Explicit operator override; the latch never clears itself.
	RollbackReset bool

	RollbackWindowRuns         int
	MaxErrorRateBps            int64
	MaxTimeoutRateBps          int64
	MaxLimitedRateBps          int64
	MinNonNegativeDeltaRateBps int64
}

// Sample is one run's candidate outcome, ingested by the rollback window.
// Appended only when the candidate was actually selected to run and
// rollback was not already active.
type Sample struct {
	Error            bool `json:"error"`
	Timeout          bool `json:"timeout"`
	Limited          bool `json:"limited"`
	NonNegativeDelta bool `json:"non_negative_delta"`
}

// RollbackState is the persistent latch plus its evidence window.
// Mutated only by the Controller; persists across runs until an operator
// reset.
type RollbackState struct {
	Active          bool      `json:"active"`
	ReasonCode      string    `json:"reason_code,omitempty"`
	ActivatedAt     time.Time `json:"activated_at,omitempty"`
	ActivatingRunID string    `json:"activating_run_id,omitempty"`
	Window          []Sample  `json:"window"`
}

// Snapshot captures the latch for audit records.
func (s *RollbackState) Snapshot() RollbackSnapshot {
	return RollbackSnapshot{
		Active:          s.Active,
		ReasonCode:      s.ReasonCode,
		ActivatingRunID: s.ActivatingRunID,
		WindowSize:      len(s.Window),
	}
}

// RollbackSnapshot is an immutable view of the latch at a point in time.
type RollbackSnapshot struct {
	Active          bool   `json:"active"`
	ReasonCode      string `json:"reason_code,omitempty"`
	ActivatingRunID string `json:"activating_run_id,omitempty"`
	WindowSize      int    `json:"window_size"`
}

// WindowStats are the recomputed failure rates over the current window,
// in basis points.
type WindowStats struct {
	Total                   int   `json:"total"`
	ErrorRateBps            int64 `json:"error_rate_bps"`
	TimeoutRateBps          int64 `json:"timeout_rate_bps"`
	LimitedRateBps          int64 `json:"limited_rate_bps"`
	NonNegativeDeltaRateBps int64 `json:"non_negative_delta_rate_bps"`
}
