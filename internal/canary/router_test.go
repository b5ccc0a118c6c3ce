package canary

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ringswap/internal/engine"
	"github.com/roach88/ringswap/internal/swap"
)

func routeInput() RouteInput {
	return RouteInput{
		Actor:     swap.ActorRef{Type: "user", ID: "actor-1"},
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRoute_Disabled(t *testing.T) {
	d := Route(routeInput())
	assert.False(t, d.Selected)
	assert.Equal(t, SkipDisabled, d.SkippedReason)
	assert.Equal(t, int64(-1), d.Bucket)
}

func TestRoute_RollbackActiveSkipsAllModes(t *testing.T) {
	t.Run("primary mode", func(t *testing.T) {
		in := routeInput()
		in.Primary = RolloutConfig{Enabled: true}
		in.RollbackActive = true
		d := Route(in)
		assert.False(t, d.Selected)
		assert.Equal(t, SkipRollbackActive, d.SkippedReason)
	})

	t.Run("canary mode with forced bucket", func(t *testing.T) {
		in := routeInput()
		in.Canary = RolloutConfig{Enabled: true, RolloutBps: 10000, ForceBucketV2: true}
		in.RollbackActive = true
		d := Route(in)
		assert.False(t, d.Selected, "the latch wins over every selection rule")
		assert.Equal(t, SkipRollbackActive, d.SkippedReason)
	})
}

func TestRoute_PrimaryUnconditional(t *testing.T) {
	in := routeInput()
	in.Primary = RolloutConfig{Enabled: true}
	d := Route(in)

	assert.True(t, d.Selected)
	assert.Equal(t, ModePrimary, d.Mode)
	assert.Equal(t, int64(-1), d.Bucket, "primary mode never computes a bucket")
}

func TestRoute_CanaryZeroRolloutNeverSelects(t *testing.T) {
	in := routeInput()
	in.Canary = RolloutConfig{Enabled: true, RolloutBps: 0, Salt: "s"}

	for i := 0; i < 200; i++ {
		in.Actor.ID = fmt.Sprintf("actor-%d", i)
		d := Route(in)
		assert.False(t, d.Selected)
		assert.Equal(t, SkipRolloutExcluded, d.SkippedReason)
		assert.GreaterOrEqual(t, d.Bucket, int64(0))
	}
}

func TestRoute_CanaryFullRolloutAlwaysSelects(t *testing.T) {
	in := routeInput()
	in.Canary = RolloutConfig{Enabled: true, RolloutBps: 10000, Salt: "s"}

	for i := 0; i < 200; i++ {
		in.Actor.ID = fmt.Sprintf("actor-%d", i)
		d := Route(in)
		assert.True(t, d.Selected)
		assert.Equal(t, ModeCanary, d.Mode)
	}
}

func TestRoute_ForceBucketV2(t *testing.T) {
	in := routeInput()
	in.Canary = RolloutConfig{Enabled: true, RolloutBps: 0, Salt: "s", ForceBucketV2: true}

	d := Route(in)
	assert.True(t, d.Selected)
	assert.Equal(t, ModeCanary, d.Mode)
}

func TestRoute_Deterministic(t *testing.T) {
	in := routeInput()
	in.Canary = RolloutConfig{Enabled: true, RolloutBps: 5000, Salt: "s"}
	in.IdempotencyKey = "idem-1"

	first := Route(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Route(in))
	}
}

func TestTriggersFrom(t *testing.T) {
	trig := TriggersFrom(engine.Stats{TimedOut: true, Limited: true})
	assert.True(t, trig.TimeoutReached)
	assert.True(t, trig.MaxCyclesReached)

	trig = TriggersFrom(engine.Stats{})
	assert.False(t, trig.TimeoutReached)
	assert.False(t, trig.MaxCyclesReached)
}

func TestFallbackReason(t *testing.T) {
	cfg := RolloutConfig{FallbackOnTimeout: true, FallbackOnLimited: true}

	assert.Equal(t, FallbackTimeout,
		FallbackReason(ModePrimary, cfg, SafetyTriggers{TimeoutReached: true}))
	assert.Equal(t, FallbackLimited,
		FallbackReason(ModePrimary, cfg, SafetyTriggers{MaxCyclesReached: true}))
	assert.Equal(t, FallbackTimeout,
		FallbackReason(ModePrimary, cfg, SafetyTriggers{TimeoutReached: true, MaxCyclesReached: true}),
		"timeout is checked before limited")
	assert.Equal(t, "",
		FallbackReason(ModePrimary, RolloutConfig{}, SafetyTriggers{TimeoutReached: true}),
		"no fallback when the policy is off")
	assert.Equal(t, "",
		FallbackReason(ModeCanary, cfg, SafetyTriggers{TimeoutReached: true}),
		"canary mode never falls back on triggers")
}

func TestErrorReason(t *testing.T) {
	assert.Equal(t, FallbackPrimaryError, ErrorReason(ModePrimary))
	assert.Equal(t, FallbackCanaryError, ErrorReason(ModeCanary))
}
