package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleDigest_Stable(t *testing.T) {
	first, err := CycleDigest([]string{"intent-a", "intent-b", "intent-c"})
	require.NoError(t, err)
	again, err := CycleDigest([]string{"intent-a", "intent-b", "intent-c"})
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Len(t, first, 64, "hex-encoded SHA-256")
}

func TestCycleDigest_OrderSensitive(t *testing.T) {
	// Digest is computed over the already rotation-normalized member list,
	// so a different order means a different ring.
	abc, err := CycleDigest([]string{"intent-a", "intent-b", "intent-c"})
	require.NoError(t, err)
	acb, err := CycleDigest([]string{"intent-a", "intent-c", "intent-b"})
	require.NoError(t, err)

	assert.NotEqual(t, abc, acb)
}

func TestCycleDigest_DomainSeparation(t *testing.T) {
	cycle, err := CycleDigest([]string{"x"})
	require.NoError(t, err)
	decision, err := DecisionDigest(map[string]any{"members": []string{"x"}})
	require.NoError(t, err)

	assert.NotEqual(t, cycle, decision, "same payload under different domains must differ")
}
