package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/config"
	"github.com/roach88/ringswap/internal/engine"
	"github.com/roach88/ringswap/internal/service"
	"github.com/roach88/ringswap/internal/store"
	"github.com/roach88/ringswap/internal/swap"
)

// RunTrace is the observable outcome of one scenario run: the primary
// response, the persisted routing decision, and the shadow diff if one was
// recorded.
type RunTrace struct {
	Result   *service.RunResult
	Decision canary.DecisionRecord
	Diff     *canary.DiffRecord
}

// Result is the outcome of executing a whole scenario.
type Result struct {
	Scenario *Scenario
	Runs     []RunTrace
}

// Run executes every step of a scenario against a fresh in-memory stack.
// Proposal ids come from the scenario's fixed list, so output is fully
// deterministic apart from wall-clock durations (which snapshots exclude).
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	cfg, err := config.FromMap(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := engine.NewFixedGenerator(scenario.ProposalIDs...)
	svc, err := service.New(ctx, cfg, st, logger, gen)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := &Result{Scenario: scenario}
	for i, step := range scenario.Runs {
		req, err := step.Request()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: runs[%d]: %w", scenario.Name, i, err)
		}

		runResult, err := svc.Execute(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: runs[%d]: %w", scenario.Name, i, err)
		}

		trace := RunTrace{Result: runResult}
		trace.Decision, err = findDecision(ctx, st, runResult.RunID)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: runs[%d]: %w", scenario.Name, i, err)
		}
		trace.Diff, err = findDiff(ctx, st, runResult.RunID)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: runs[%d]: %w", scenario.Name, i, err)
		}

		result.Runs = append(result.Runs, trace)
	}
	return result, nil
}

func findDecision(ctx context.Context, st *store.Store, runID string) (canary.DecisionRecord, error) {
	decisions, err := st.ReadDecisions(ctx, 0)
	if err != nil {
		return canary.DecisionRecord{}, err
	}
	for _, d := range decisions {
		if d.RunID == runID {
			return d, nil
		}
	}
	return canary.DecisionRecord{}, fmt.Errorf("no decision recorded for %s", runID)
}

func findDiff(ctx context.Context, st *store.Store, runID string) (*canary.DiffRecord, error) {
	diffs, err := st.ReadShadowDiffs(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, d := range diffs {
		if d.RunID == runID {
			return &d, nil
		}
	}
	return nil, nil
}

// canonicalMap renders the scenario outcome for golden comparison. Durations,
// hash digests, bucket values, and timestamps are excluded: everything left
// is a pure function of the scenario file.
func (r *Result) canonicalMap() map[string]any {
	runs := make([]any, len(r.Runs))
	for i, trace := range r.Runs {
		runs[i] = trace.canonicalMap()
	}
	return map[string]any{
		"scenario_name": r.Scenario.Name,
		"runs":          runs,
	}
}

func (t RunTrace) canonicalMap() map[string]any {
	proposals := make([]any, len(t.Result.Proposals))
	for i, p := range t.Result.Proposals {
		proposals[i] = map[string]any{
			"cycle_key":      p.CycleKey,
			"participants":   p.IntentIDs(),
			"confidence_bps": p.ConfidenceBps,
			"score_scaled":   p.ScoreScaled,
		}
	}

	stats := map[string]any{
		"intents_active":      t.Result.Stats.IntentsActive,
		"edges":               t.Result.Stats.Edges,
		"candidate_cycles":    t.Result.Stats.CandidateCycles,
		"candidate_proposals": t.Result.Stats.CandidateProposals,
		"selected_proposals":  t.Result.Stats.SelectedProposals,
		"timed_out":           t.Result.Stats.TimedOut,
		"limited":             t.Result.Stats.Limited,
	}

	decision := map[string]any{
		"selected":              t.Decision.Selected,
		"candidate_ran":         t.Decision.CandidateRan,
		"primary_version":       t.Decision.PrimaryVersion,
		"rollback_active_after": t.Decision.RollbackAfter.Active,
	}
	if t.Decision.Mode != "" {
		decision["mode"] = string(t.Decision.Mode)
	}
	if t.Decision.SkippedReason != "" {
		decision["skipped_reason"] = t.Decision.SkippedReason
	}
	if t.Decision.FallbackReason != "" {
		decision["fallback_reason"] = t.Decision.FallbackReason
	}

	m := map[string]any{
		"run_id":       t.Result.RunID,
		"proposal_ids": t.Result.ProposalIDs,
		"proposals":    proposals,
		"stats":        stats,
		"decision":     decision,
	}

	if t.Diff != nil {
		diff := map[string]any{
			"baseline_selected":         t.Diff.BaselineSelected,
			"candidate_selected":        t.Diff.CandidateSelected,
			"cycle_keys_both":           t.Diff.CycleKeysBoth,
			"cycle_keys_baseline_only":  t.Diff.CycleKeysBaselineOnly,
			"cycle_keys_candidate_only": t.Diff.CycleKeysCandidateOnly,
			"delta_score_sum_scaled":    t.Diff.DeltaScoreSumScaled,
		}
		if t.Diff.Error != "" {
			diff["error"] = t.Diff.Error
		}
		m["shadow_diff"] = diff
	}

	return m
}

// Snapshot renders the canonical JSON for this result.
func (r *Result) Snapshot() ([]byte, error) {
	return swap.MarshalCanonical(r.canonicalMap())
}
