package canary

import "time"

// Canonical map conversions for decision, diff, and rollback records.
// Required because swap.MarshalCanonical only handles maps, slices, and
// primitives; these maps feed both durable storage and golden snapshots,
// so key names match the structs' JSON tags exactly and optional fields
// are omitted when zero.

// CanonicalMap renders the decision record for canonical serialization.
func (r DecisionRecord) CanonicalMap() map[string]any {
	m := map[string]any{
		"run_id":                 r.RunID,
		"selected":               r.Selected,
		"bucket":                 r.Bucket,
		"primary_version":        r.PrimaryVersion,
		"candidate_ran":          r.CandidateRan,
		"triggers":               r.Triggers.canonicalMap(),
		"delta_score_sum_scaled": r.DeltaScoreSumScaled,
		"delta_known":            r.DeltaKnown,
		"rollback_before":        r.RollbackBefore.canonicalMap(),
		"rollback_after":         r.RollbackAfter.canonicalMap(),
		"window_stats":           r.WindowStats.canonicalMap(),
	}
	if !r.RecordedAt.IsZero() {
		m["recorded_at"] = r.RecordedAt.UTC().Format(time.RFC3339)
	}
	if r.Mode != "" {
		m["mode"] = string(r.Mode)
	}
	if r.SkippedReason != "" {
		m["skipped_reason"] = r.SkippedReason
	}
	if r.FallbackReason != "" {
		m["fallback_reason"] = r.FallbackReason
	}
	if r.CandidateError != "" {
		m["candidate_error"] = r.CandidateError
	}
	return m
}

// CanonicalMap renders the diff record for canonical serialization.
func (d DiffRecord) CanonicalMap() map[string]any {
	m := map[string]any{
		"run_id":                    d.RunID,
		"baseline_selected":         d.BaselineSelected,
		"candidate_selected":        d.CandidateSelected,
		"cycle_keys_both":           d.CycleKeysBoth,
		"cycle_keys_baseline_only":  d.CycleKeysBaselineOnly,
		"cycle_keys_candidate_only": d.CycleKeysCandidateOnly,
		"delta_score_sum_scaled":    d.DeltaScoreSumScaled,
		"baseline_duration_ms":      d.BaselineDurationMs,
		"candidate_duration_ms":     d.CandidateDurationMs,
		"triggers":                  d.Triggers.canonicalMap(),
	}
	if d.Error != "" {
		m["error"] = d.Error
	}
	return m
}

// CanonicalMap renders the rollback state for canonical serialization.
func (s RollbackState) CanonicalMap() map[string]any {
	window := make([]any, len(s.Window))
	for i, sample := range s.Window {
		window[i] = map[string]any{
			"error":              sample.Error,
			"timeout":            sample.Timeout,
			"limited":            sample.Limited,
			"non_negative_delta": sample.NonNegativeDelta,
		}
	}
	m := map[string]any{
		"active": s.Active,
		"window": window,
	}
	if s.ReasonCode != "" {
		m["reason_code"] = s.ReasonCode
	}
	if !s.ActivatedAt.IsZero() {
		m["activated_at"] = s.ActivatedAt.UTC().Format(time.RFC3339)
	}
	if s.ActivatingRunID != "" {
		m["activating_run_id"] = s.ActivatingRunID
	}
	return m
}

func (t SafetyTriggers) canonicalMap() map[string]any {
	return map[string]any{
		"timeout_reached":    t.TimeoutReached,
		"max_cycles_reached": t.MaxCyclesReached,
	}
}

func (s RollbackSnapshot) canonicalMap() map[string]any {
	m := map[string]any{
		"active":      s.Active,
		"window_size": s.WindowSize,
	}
	if s.ReasonCode != "" {
		m["reason_code"] = s.ReasonCode
	}
	if s.ActivatingRunID != "" {
		m["activating_run_id"] = s.ActivatingRunID
	}
	return m
}

func (w WindowStats) canonicalMap() map[string]any {
	return map[string]any{
		"total":                       w.Total,
		"error_rate_bps":              w.ErrorRateBps,
		"timeout_rate_bps":            w.TimeoutRateBps,
		"limited_rate_bps":            w.LimitedRateBps,
		"non_negative_delta_rate_bps": w.NonNegativeDeltaRateBps,
	}
}
