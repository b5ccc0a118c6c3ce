package canary

import (
	"time"

	"github.com/roach88/ringswap/internal/engine"
	"github.com/roach88/ringswap/internal/swap"
)

// RouteInput is everything the routing decision depends on. RollbackActive
// reflects the latch AFTER any rollback_reset for this run was applied.
type RouteInput struct {
	Primary        RolloutConfig
	Canary         RolloutConfig
	Actor          swap.ActorRef
	IdempotencyKey string
	Timestamp      time.Time
	RollbackActive bool
}

// Decision is the routing outcome for one run.
//
// Selected means the candidate engine runs this request. Bucket is -1 when
// no bucket was computed (disabled, rollback, or primary mode).
type Decision struct {
	Selected      bool
	Mode          Mode
	SkippedReason string
	Bucket        int64
}

// Route decides, once per run, whether the candidate engine participates
// and in what capacity. Pure function: no side effects, no clock reads.
//
// Precedence:
//  1. Neither mode enabled: skipped, "canary_disabled".
//  2. Rollback latch active: skipped, "rollback_active", regardless of mode.
//  3. Primary mode enabled: candidate selected unconditionally.
//  4. Canary mode: selected iff force_bucket_v2 or bucket < rollout_bps;
//     otherwise skipped, "rollout_excluded".
func Route(in RouteInput) Decision {
	if !in.Primary.Enabled && !in.Canary.Enabled {
		return Decision{SkippedReason: SkipDisabled, Bucket: -1}
	}
	if in.RollbackActive {
		return Decision{SkippedReason: SkipRollbackActive, Bucket: -1}
	}
	if in.Primary.Enabled {
		return Decision{Selected: true, Mode: ModePrimary, Bucket: -1}
	}

	bucket := Bucket(in.Canary.Salt, in.Actor, in.IdempotencyKey, in.Timestamp)
	if in.Canary.ForceBucketV2 || bucket < in.Canary.RolloutBps {
		return Decision{Selected: true, Mode: ModeCanary, Bucket: bucket}
	}
	return Decision{Mode: ModeCanary, SkippedReason: SkipRolloutExcluded, Bucket: bucket}
}

// SafetyTriggers are derived from the candidate's run statistics.
type SafetyTriggers struct {
	TimeoutReached   bool `json:"timeout_reached"`
	MaxCyclesReached bool `json:"max_cycles_reached"`
}

// TriggersFrom maps engine statistics to safety triggers.
func TriggersFrom(stats engine.Stats) SafetyTriggers {
	return SafetyTriggers{
		TimeoutReached:   stats.TimedOut,
		MaxCyclesReached: stats.Limited,
	}
}

// FallbackReason returns the non-empty reason code when a successful
// candidate run must NOT become primary.
//
// Only primary mode falls back on safety triggers; in canary mode a
// successful candidate run always becomes primary for that one request -
// canary keeps the baseline only on rollback, exclusion, or error.
func FallbackReason(mode Mode, cfg RolloutConfig, triggers SafetyTriggers) string {
	if mode != ModePrimary {
		return ""
	}
	if cfg.FallbackOnTimeout && triggers.TimeoutReached {
		return FallbackTimeout
	}
	if cfg.FallbackOnLimited && triggers.MaxCyclesReached {
		return FallbackLimited
	}
	return ""
}

// ErrorReason maps the routing mode to the reason code recorded when the
// candidate run failed outright.
func ErrorReason(mode Mode) string {
	if mode == ModePrimary {
		return FallbackPrimaryError
	}
	return FallbackCanaryError
}
