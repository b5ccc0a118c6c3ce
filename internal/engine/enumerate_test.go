package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ringswap/internal/swap"
)

func enumConfig(minLen, maxLen int) Config {
	return Config{
		Version:           VersionCandidate,
		MinCycleLength:    minLen,
		MaxCycleLength:    maxLen,
		MaxCyclesExplored: Unbounded,
	}
}

func TestCanonicalCycle_RotationInvariant(t *testing.T) {
	membersA, keyA := CanonicalCycle([]string{"intent-a", "intent-b", "intent-c"})
	membersB, keyB := CanonicalCycle([]string{"intent-b", "intent-c", "intent-a"})
	membersC, keyC := CanonicalCycle([]string{"intent-c", "intent-a", "intent-b"})

	assert.Equal(t, keyA, keyB)
	assert.Equal(t, keyA, keyC)
	assert.Equal(t, []string{"intent-a", "intent-b", "intent-c"}, membersA)
	assert.Equal(t, membersA, membersB)
	assert.Equal(t, membersA, membersC)
	assert.Equal(t, "intent-a>intent-b>intent-c", keyA)
}

func TestCanonicalCycle_Empty(t *testing.T) {
	members, key := CanonicalCycle(nil)
	assert.Empty(t, members)
	assert.Equal(t, "", key)
}

func TestEnumerate_ThreeCycle(t *testing.T) {
	g := BuildGraph(ringIntents(), nil, time.Now())
	res := NewEnumerator(enumConfig(2, 3)).Enumerate(g)

	require.Len(t, res.Cycles, 1)
	assert.Equal(t, "intent-a>intent-b>intent-c", res.Cycles[0].Key)
	assert.False(t, res.Limited)
	assert.False(t, res.TimedOut)
}

func TestEnumerate_LengthBoundExcludesThreeCycle(t *testing.T) {
	// min=2 max=2 on a graph whose only ring has three members.
	g := BuildGraph(ringIntents(), nil, time.Now())
	res := NewEnumerator(enumConfig(2, 2)).Enumerate(g)

	assert.Empty(t, res.Cycles)
	assert.False(t, res.Limited)
	assert.False(t, res.TimedOut)
}

func TestEnumerate_TwoCycle(t *testing.T) {
	intents := []swap.SwapIntent{
		intent("intent-a", []string{"asset-x"}, []string{"asset-y"}),
		intent("intent-b", []string{"asset-y"}, []string{"asset-x"}),
	}
	g := BuildGraph(intents, nil, time.Now())
	res := NewEnumerator(enumConfig(2, 3)).Enumerate(g)

	require.Len(t, res.Cycles, 1)
	assert.Equal(t, "intent-a>intent-b", res.Cycles[0].Key)
}

func TestEnumerate_MinGreaterThanMax(t *testing.T) {
	g := BuildGraph(ringIntents(), nil, time.Now())
	res := NewEnumerator(enumConfig(4, 3)).Enumerate(g)

	assert.Empty(t, res.Cycles)
	assert.False(t, res.Limited)
	assert.False(t, res.TimedOut)
}

func TestEnumerate_ZeroBudgetIsLimited(t *testing.T) {
	cfg := enumConfig(2, 3)
	cfg.MaxCyclesExplored = 0

	g := BuildGraph(ringIntents(), nil, time.Now())
	res := NewEnumerator(cfg).Enumerate(g)

	assert.Empty(t, res.Cycles)
	assert.True(t, res.Limited, "budget 0 exhausts on the first explored edge")
}

func TestEnumerate_BudgetStopsEarly(t *testing.T) {
	// Two disjoint 2-cycles; a tiny budget finds at most the first.
	intents := []swap.SwapIntent{
		intent("intent-a", []string{"asset-x"}, []string{"asset-y"}),
		intent("intent-b", []string{"asset-y"}, []string{"asset-x"}),
		intent("intent-c", []string{"asset-p"}, []string{"asset-q"}),
		intent("intent-d", []string{"asset-q"}, []string{"asset-p"}),
	}
	g := BuildGraph(intents, nil, time.Now())

	full := NewEnumerator(enumConfig(2, 3)).Enumerate(g)
	require.Len(t, full.Cycles, 2)
	require.False(t, full.Limited)

	cfg := enumConfig(2, 3)
	cfg.MaxCyclesExplored = 2
	res := NewEnumerator(cfg).Enumerate(g)

	assert.True(t, res.Limited)
	assert.Less(t, len(res.Cycles), 2)
}

func TestEnumerate_TimeoutCooperative(t *testing.T) {
	cfg := enumConfig(2, 3)
	cfg.TimeoutMs = 10

	// Injected clock jumps far past the deadline on the second read, so the
	// first DFS re-entry observes an expired budget.
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	reads := 0
	now := func() time.Time {
		reads++
		if reads == 1 {
			return base
		}
		return base.Add(time.Second)
	}

	g := BuildGraph(ringIntents(), nil, base)
	res := NewEnumeratorWithClock(cfg, now).Enumerate(g)

	assert.True(t, res.TimedOut)
	assert.Empty(t, res.Cycles)
}

func TestEnumerate_NoTimeoutWhenDisabled(t *testing.T) {
	cfg := enumConfig(2, 3)
	cfg.TimeoutMs = 0 // disabled

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	now := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Hour)
	}

	g := BuildGraph(ringIntents(), nil, base)
	res := NewEnumeratorWithClock(cfg, now).Enumerate(g)

	assert.False(t, res.TimedOut)
	assert.Len(t, res.Cycles, 1)
}

func TestEnumerate_DenseGraphDeduplicates(t *testing.T) {
	// Four intents all offering and wanting the same asset pool produce a
	// complete digraph; every ring must appear exactly once.
	pool := []string{"asset-x"}
	intents := []swap.SwapIntent{
		intent("intent-a", pool, pool),
		intent("intent-b", pool, pool),
		intent("intent-c", pool, pool),
		intent("intent-d", pool, pool),
	}
	g := BuildGraph(intents, nil, time.Now())
	require.Equal(t, 12, g.EdgeCount())

	res := NewEnumerator(enumConfig(2, 3)).Enumerate(g)

	keys := make(map[string]bool)
	for _, c := range res.Cycles {
		assert.False(t, keys[c.Key], "duplicate cycle key %s", c.Key)
		keys[c.Key] = true
	}
	// K4 directed: 6 distinct 2-cycles and 8 distinct 3-cycles.
	assert.Len(t, res.Cycles, 14)
}
