package canary

import (
	"sort"

	"github.com/roach88/ringswap/internal/engine"
)

// ShadowConfig enables shadow execution independently of canary selection:
// the candidate runs for comparison even when it was not selected as
// primary, and its result never affects the response.
type ShadowConfig struct {
	Enabled    bool
	ForceError bool
	MaxDiffs   int
}

// DiffRecord is the structured comparison of one baseline/candidate pair.
//
// Error entries (Error != "") record a forced or real shadow execution
// failure instead of a comparison. Score deltas are exact fixed-point
// integers; the cycle-key sets are sorted for determinism.
type DiffRecord struct {
	RunID string `json:"run_id"`
	Error string `json:"error,omitempty"`

	BaselineSelected  int `json:"baseline_selected"`
	CandidateSelected int `json:"candidate_selected"`

	CycleKeysBoth          []string `json:"cycle_keys_both"`
	CycleKeysBaselineOnly  []string `json:"cycle_keys_baseline_only"`
	CycleKeysCandidateOnly []string `json:"cycle_keys_candidate_only"`

	DeltaScoreSumScaled int64 `json:"delta_score_sum_scaled"`

	BaselineDurationMs  int64 `json:"baseline_duration_ms"`
	CandidateDurationMs int64 `json:"candidate_duration_ms"`

	Triggers SafetyTriggers `json:"triggers"`
}

// BuildDiff computes the structured diff between the baseline and candidate
// results of one run.
func BuildDiff(runID string, baseline, candidate *engine.Result) DiffRecord {
	both, baseOnly, candOnly := overlap(baseline.CycleKeys(), candidate.CycleKeys())

	return DiffRecord{
		RunID:                  runID,
		BaselineSelected:       len(baseline.Proposals),
		CandidateSelected:      len(candidate.Proposals),
		CycleKeysBoth:          both,
		CycleKeysBaselineOnly:  baseOnly,
		CycleKeysCandidateOnly: candOnly,
		DeltaScoreSumScaled:    candidate.TotalScoreScaled() - baseline.TotalScoreScaled(),
		BaselineDurationMs:     baseline.Stats.DurationMs,
		CandidateDurationMs:    candidate.Stats.DurationMs,
		Triggers:               TriggersFrom(candidate.Stats),
	}
}

// ErrorDiff records a shadow execution failure. Never throws further: a
// broken shadow path must not affect the primary result.
func ErrorDiff(runID string, failure *engine.Failure) DiffRecord {
	return DiffRecord{
		RunID:                  runID,
		Error:                  failure.Error(),
		CycleKeysBoth:          []string{},
		CycleKeysBaselineOnly:  []string{},
		CycleKeysCandidateOnly: []string{},
	}
}

// overlap partitions two cycle-key sets into intersection and exclusives,
// each sorted ascending.
func overlap(baseline, candidate []string) (both, baseOnly, candOnly []string) {
	inBase := make(map[string]bool, len(baseline))
	for _, k := range baseline {
		inBase[k] = true
	}
	inCand := make(map[string]bool, len(candidate))
	for _, k := range candidate {
		inCand[k] = true
	}

	both, baseOnly, candOnly = []string{}, []string{}, []string{}
	for k := range inBase {
		if inCand[k] {
			both = append(both, k)
		} else {
			baseOnly = append(baseOnly, k)
		}
	}
	for k := range inCand {
		if !inBase[k] {
			candOnly = append(candOnly, k)
		}
	}

	sort.Strings(both)
	sort.Strings(baseOnly)
	sort.Strings(candOnly)
	return both, baseOnly, candOnly
}

// DiffHistory is the bounded, append-only shadow diff retention: newest
// MaxDiffs records by run sequence.
type DiffHistory struct {
	max     int
	records []DiffRecord
}

// NewDiffHistory creates a history retaining at most max records.
// max <= 0 means unbounded.
func NewDiffHistory(max int) *DiffHistory {
	return &DiffHistory{max: max}
}

// Append adds a record and prunes overflow, evicting the oldest records by
// run sequence.
func (h *DiffHistory) Append(rec DiffRecord) {
	h.records = append(h.records, rec)
	sort.SliceStable(h.records, func(i, j int) bool {
		return runLess(h.records[i].RunID, h.records[j].RunID)
	})
	if h.max > 0 && len(h.records) > h.max {
		h.records = h.records[len(h.records)-h.max:]
	}
}

// Records returns the retained records, oldest first.
// Callers must not mutate.
func (h *DiffHistory) Records() []DiffRecord { return h.records }
