package canary

import (
	"sort"
	"time"

	"github.com/roach88/ringswap/internal/swap"
)

// DecisionRecord is the immutable audit entry written once per run - also
// for skipped runs, so that "the candidate never ran" is itself auditable.
type DecisionRecord struct {
	RunID      string    `json:"run_id"`
	RecordedAt time.Time `json:"recorded_at"`

	// Routing inputs/outputs.
	Mode          Mode   `json:"mode,omitempty"`
	Selected      bool   `json:"selected"`
	SkippedReason string `json:"skipped_reason,omitempty"`
	Bucket        int64  `json:"bucket"`

	// Outcome.
	PrimaryVersion      string         `json:"primary_version"`
	FallbackReason      string         `json:"fallback_reason,omitempty"`
	CandidateRan        bool           `json:"candidate_ran"`
	CandidateError      string         `json:"candidate_error,omitempty"`
	Triggers            SafetyTriggers `json:"triggers"`
	DeltaScoreSumScaled int64          `json:"delta_score_sum_scaled"`
	DeltaKnown          bool           `json:"delta_known"`

	// Rollback latch before and after this run's sample was ingested.
	RollbackBefore RollbackSnapshot `json:"rollback_before"`
	RollbackAfter  RollbackSnapshot `json:"rollback_after"`
	WindowStats    WindowStats      `json:"window_stats"`
}

// AuditLog is the append-only, size-bounded decision history.
type AuditLog struct {
	max     int
	records []DecisionRecord
}

// NewAuditLog creates a log retaining at most max records.
// max <= 0 means unbounded.
func NewAuditLog(max int) *AuditLog {
	return &AuditLog{max: max}
}

// Append adds one record, evicting the oldest records ordered by run
// sequence number when the bound is exceeded. Run ids without a parseable
// numeric suffix sort last (newest), so they are evicted last.
func (l *AuditLog) Append(rec DecisionRecord) {
	l.records = append(l.records, rec)
	sort.SliceStable(l.records, func(i, j int) bool {
		return runLess(l.records[i].RunID, l.records[j].RunID)
	})
	if l.max > 0 && len(l.records) > l.max {
		l.records = l.records[len(l.records)-l.max:]
	}
}

// Records returns the retained records, oldest first.
// Callers must not mutate.
func (l *AuditLog) Records() []DecisionRecord { return l.records }

// runLess orders run ids by their numeric sequence suffix. Ids without a
// parseable sequence sort after all parseable ones; among themselves they
// order lexically for stability.
func runLess(a, b string) bool {
	seqA, okA := swap.RunIDSequence(a)
	seqB, okB := swap.RunIDSequence(b)
	switch {
	case okA && okB:
		return seqA < seqB
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}
