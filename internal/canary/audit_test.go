package canary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ringswap/internal/swap"
)

func TestAuditLog_AppendAndBound(t *testing.T) {
	l := NewAuditLog(3)
	for i := 1; i <= 5; i++ {
		l.Append(DecisionRecord{RunID: swap.FormatRunID(int64(i))})
	}

	records := l.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "run-000003", records[0].RunID)
	assert.Equal(t, "run-000004", records[1].RunID)
	assert.Equal(t, "run-000005", records[2].RunID)
}

func TestAuditLog_SkippedRunsAreRecorded(t *testing.T) {
	l := NewAuditLog(10)
	l.Append(DecisionRecord{RunID: "run-000001", SkippedReason: SkipDisabled, PrimaryVersion: "v1"})

	records := l.Records()
	require.Len(t, records, 1)
	assert.False(t, records[0].Selected)
	assert.Equal(t, SkipDisabled, records[0].SkippedReason)
}

func TestAuditLog_NonParseableIDsSortLast(t *testing.T) {
	l := NewAuditLog(2)
	l.Append(DecisionRecord{RunID: "run-000001"})
	l.Append(DecisionRecord{RunID: "legacy-import"})
	l.Append(DecisionRecord{RunID: "run-000002"})

	// Eviction removes the oldest by sequence: run-000001 goes first; the
	// non-parseable id counts as newest and survives.
	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "run-000002", records[0].RunID)
	assert.Equal(t, "legacy-import", records[1].RunID)
}

func TestRunLess(t *testing.T) {
	assert.True(t, runLess("run-000001", "run-000002"))
	assert.False(t, runLess("run-000002", "run-000001"))
	assert.True(t, runLess("run-000009", "weird-id"), "parseable sorts before non-parseable")
	assert.False(t, runLess("weird-id", "run-000009"))
	assert.True(t, runLess("aaa", "bbb"), "non-parseable ids order lexically")
}

func TestAuditLog_Unbounded(t *testing.T) {
	l := NewAuditLog(0)
	for i := 1; i <= 20; i++ {
		l.Append(DecisionRecord{RunID: swap.FormatRunID(int64(i))})
	}
	assert.Len(t, l.Records(), 20)
}
