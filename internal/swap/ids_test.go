package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRunID(t *testing.T) {
	assert.Equal(t, "run-000001", FormatRunID(1))
	assert.Equal(t, "run-000123", FormatRunID(123))
	assert.Equal(t, "run-1000000", FormatRunID(1000000), "sequences wider than the pad still format")
}

func TestRunIDSequence(t *testing.T) {
	seq, ok := RunIDSequence("run-000123")
	assert.True(t, ok)
	assert.Equal(t, int64(123), seq)

	seq, ok = RunIDSequence(FormatRunID(1000000))
	assert.True(t, ok)
	assert.Equal(t, int64(1000000), seq)

	_, ok = RunIDSequence("not-a-run-id")
	assert.False(t, ok)

	_, ok = RunIDSequence("run-abc")
	assert.False(t, ok)

	_, ok = RunIDSequence("run--5")
	assert.False(t, ok)
}
