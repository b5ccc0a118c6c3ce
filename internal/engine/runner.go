package engine

import (
	"fmt"
	"time"

	"github.com/roach88/ringswap/internal/swap"
)

// Input carries the typed, already-validated inputs for one engine run.
//
// AssetValues is keyed by asset id in the fixed-point unit (swap.ScaleValue).
// Missing entries never fail a run; they only exclude the asset from
// value-weighted scoring.
type Input struct {
	Intents       []swap.SwapIntent
	AssetValues   map[string]int64
	EdgeOverrides []swap.EdgeOverride
	Now           time.Time
	MaxProposals  int

	// ForceFailure, when non-empty, makes the run fail with FailureForced
	// and this message. Test hook driven by rollout configuration; forced
	// failures are treated exactly like genuine ones downstream.
	ForceFailure string
}

// Stats are the execution statistics of one engine run.
type Stats struct {
	IntentsActive      int   `json:"intents_active"`
	Edges              int   `json:"edges"`
	CandidateCycles    int   `json:"candidate_cycles"`
	CandidateProposals int   `json:"candidate_proposals"`
	SelectedProposals  int   `json:"selected_proposals"`
	TimedOut           bool  `json:"timed_out"`
	Limited            bool  `json:"limited"`
	DurationMs         int64 `json:"duration_ms"`
}

// Result is the output of one engine run: the selected proposals plus stats.
type Result struct {
	Version   string
	Proposals []swap.Proposal
	Stats     Stats
}

// TotalScoreScaled sums the selected proposals' scores in the fixed-point
// unit. Shadow diffing compares these sums as exact integers.
func (r *Result) TotalScoreScaled() int64 {
	var total int64
	for _, p := range r.Proposals {
		total += p.ScoreScaled
	}
	return total
}

// CycleKeys returns the selected proposals' canonical cycle keys.
func (r *Result) CycleKeys() []string {
	keys := make([]string, len(r.Proposals))
	for i, p := range r.Proposals {
		keys[i] = p.CycleKey
	}
	return keys
}

// Runner executes graph build -> enumeration -> selection under one Config.
type Runner struct {
	gen IDGenerator
	now func() time.Time
}

// NewRunner creates a runner minting proposal ids with gen.
func NewRunner(gen IDGenerator) *Runner {
	return &Runner{gen: gen, now: time.Now}
}

// NewRunnerWithClock creates a runner with an injected clock for
// deterministic timing in tests.
func NewRunnerWithClock(gen IDGenerator, now func() time.Time) *Runner {
	return &Runner{gen: gen, now: now}
}

// Run executes one matching run and wraps the result with timing.
//
// Run never fails for enumeration limits; it returns a *Failure only for
// the forced-failure hook or a recovered internal panic. Exactly one of
// result and failure is non-nil.
func (r *Runner) Run(in Input, cfg Config) (result *Result, failure *Failure) {
	if in.ForceFailure != "" {
		return nil, &Failure{
			Code:    FailureForced,
			Version: cfg.Version,
			Message: in.ForceFailure,
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			failure = &Failure{
				Code:    FailureInternal,
				Version: cfg.Version,
				Message: fmt.Sprintf("recovered panic: %v", rec),
			}
		}
	}()

	started := r.now()

	graph := BuildGraph(in.Intents, in.EdgeOverrides, in.Now)
	enumeration := NewEnumeratorWithClock(cfg, r.now).Enumerate(graph)
	candidates := ScoreCycles(graph, enumeration.Cycles, in.AssetValues)
	proposals, err := SelectProposals(graph, candidates, in.MaxProposals, r.gen)
	if err != nil {
		return nil, &Failure{
			Code:    FailureInternal,
			Version: cfg.Version,
			Message: err.Error(),
		}
	}

	return &Result{
		Version:   cfg.Version,
		Proposals: proposals,
		Stats: Stats{
			IntentsActive:      graph.NodeCount(),
			Edges:              graph.EdgeCount(),
			CandidateCycles:    len(enumeration.Cycles),
			CandidateProposals: len(candidates),
			SelectedProposals:  len(proposals),
			TimedOut:           enumeration.TimedOut,
			Limited:            enumeration.Limited,
			DurationMs:         r.now().Sub(started).Milliseconds(),
		},
	}, nil
}
