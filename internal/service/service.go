package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/config"
	"github.com/roach88/ringswap/internal/engine"
	"github.com/roach88/ringswap/internal/store"
	"github.com/roach88/ringswap/internal/swap"
)

// Service owns one scope's run sequence and rollback latch and executes
// matching runs against it. The internal mutex enforces at-most-one
// concurrent run per scope; callers may share a Service across goroutines.
type Service struct {
	cfg    config.Config
	store  *store.Store
	runner *engine.Runner
	log    *slog.Logger

	mu  sync.Mutex
	seq int64
}

// New creates a Service, resuming the run-id sequence from the store so
// restarts never mint colliding run ids. A nil logger discards nothing and
// falls back to slog.Default; a nil generator uses UUIDv7 proposal ids.
func New(ctx context.Context, cfg config.Config, st *store.Store, logger *slog.Logger, gen engine.IDGenerator) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = engine.UUIDv7Generator{}
	}

	seq, err := st.MaxRunSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume run sequence: %w", err)
	}

	return &Service{
		cfg:    cfg,
		store:  st,
		runner: engine.NewRunner(gen),
		log:    logger.With("scope", cfg.Scope),
		seq:    seq,
	}, nil
}

// Execute performs one matching run end to end and returns the primary
// output. Candidate failures never surface here; the run falls back to the
// baseline result and the failure is recorded in the audit trail.
func (s *Service) Execute(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.MaxProposals == 0 {
		req.MaxProposals = s.cfg.MaxProposals
	}
	assetValues, err := validate(req)
	if err != nil {
		return nil, err
	}
	if req.Now.IsZero() {
		req.Now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	runID := swap.FormatRunID(s.seq)
	log := s.log.With("run_id", runID)

	state, err := s.store.LoadRollbackState(ctx, s.cfg.Scope)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	controller := canary.NewController(&state)

	// Operator override: the latch never clears itself.
	if s.cfg.Primary.RollbackReset {
		if state.Active {
			log.Info("rollback latch cleared by operator reset",
				"reason_code", state.ReasonCode,
				"activating_run_id", state.ActivatingRunID)
		}
		controller.Reset()
	}
	rollbackBefore := state.Snapshot()

	input := engine.Input{
		Intents:       req.Intents,
		AssetValues:   assetValues,
		EdgeOverrides: req.EdgeOverrides,
		Now:           req.Now,
		MaxProposals:  req.MaxProposals,
	}

	// The baseline always runs; it is the trusted fallback for every path.
	// A baseline failure is a genuine internal fault and fails the run.
	baseline, baseFail := s.runner.Run(input, engine.BaselineConfig())
	if baseFail != nil {
		return nil, fmt.Errorf("run %s: baseline engine: %w", runID, baseFail)
	}

	decision := canary.Route(canary.RouteInput{
		Primary:        s.cfg.Primary,
		Canary:         s.cfg.Canary,
		Actor:          req.Actor,
		IdempotencyKey: req.IdempotencyKey,
		Timestamp:      req.Now,
		RollbackActive: state.Active,
	})

	modeCfg := s.cfg.Canary
	if decision.Mode == canary.ModePrimary {
		modeCfg = s.cfg.Primary
	}

	var (
		candidate      *engine.Result
		candFail       *engine.Failure
		triggers       canary.SafetyTriggers
		fallbackReason string
	)
	if decision.Selected {
		candInput := input
		if modeCfg.ForceError {
			candInput.ForceFailure = "forced candidate failure"
		}
		candidate, candFail = s.runner.Run(candInput, s.cfg.Candidate)
		if candFail != nil {
			fallbackReason = canary.ErrorReason(decision.Mode)
			log.Warn("candidate engine failed, falling back to baseline",
				"mode", string(decision.Mode), "error", candFail.Error())
		} else {
			triggers = canary.TriggersFrom(candidate.Stats)
			fallbackReason = canary.FallbackReason(decision.Mode, modeCfg, triggers)
			if fallbackReason != "" {
				log.Info("candidate hit safety trigger, baseline stays primary",
					"fallback_reason", fallbackReason)
			}
		}
	}

	primary := baseline
	primaryVersion := engine.VersionBaseline
	if candidate != nil && fallbackReason == "" {
		primary = candidate
		primaryVersion = engine.VersionCandidate
	}

	var deltaScaled int64
	deltaKnown := false
	if candidate != nil {
		deltaScaled = candidate.TotalScoreScaled() - baseline.TotalScoreScaled()
		deltaKnown = true
	}

	// Shadow diffing never affects the primary result. When shadowing is
	// enabled a candidate run exists for comparison even if routing skipped
	// it; otherwise a diff is recorded only when the candidate already ran.
	var diff *canary.DiffRecord
	switch {
	case s.cfg.Shadow.Enabled:
		diff = s.shadowDiff(runID, input, baseline, candidate)
	case candidate != nil:
		d := canary.BuildDiff(runID, baseline, candidate)
		diff = &d
	}

	// The rollback window samples only runs where the candidate was
	// actually selected; shadow-only runs contribute no evidence.
	var sample *canary.Sample
	if decision.Selected {
		if candFail != nil {
			sample = &canary.Sample{Error: true}
		} else {
			sample = &canary.Sample{
				Timeout:          triggers.TimeoutReached,
				Limited:          triggers.MaxCyclesReached,
				NonNegativeDelta: deltaScaled >= 0,
			}
		}
	}

	thresholds := canary.ThresholdsFrom(s.cfg.Canary)
	if s.cfg.Primary.Enabled {
		thresholds = canary.ThresholdsFrom(s.cfg.Primary)
	}

	windowStats := controller.UpdateState(sample, thresholds, req.Now, runID)
	if state.Active && !rollbackBefore.Active {
		log.Warn("rollback latch activated",
			"reason_code", state.ReasonCode,
			"window_total", windowStats.Total)
	}

	record := canary.DecisionRecord{
		RunID:               runID,
		RecordedAt:          req.Now,
		Mode:                decision.Mode,
		Selected:            decision.Selected,
		SkippedReason:       decision.SkippedReason,
		Bucket:              decision.Bucket,
		PrimaryVersion:      primaryVersion,
		FallbackReason:      fallbackReason,
		CandidateRan:        decision.Selected,
		Triggers:            triggers,
		DeltaScoreSumScaled: deltaScaled,
		DeltaKnown:          deltaKnown,
		RollbackBefore:      rollbackBefore,
		RollbackAfter:       state.Snapshot(),
		WindowStats:         windowStats,
	}
	if candFail != nil {
		record.CandidateError = candFail.Error()
	}

	result := &RunResult{
		RunID:       runID,
		Stats:       primary.Stats,
		ProposalIDs: proposalIDs(primary.Proposals),
		Proposals:   primary.Proposals,
	}

	if err := s.persist(ctx, req, result, primaryVersion, diff, record, state); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	log.Info("matching run complete",
		"primary_version", primaryVersion,
		"selected", decision.Selected,
		"skipped_reason", decision.SkippedReason,
		"proposals", len(result.Proposals),
		"duration_ms", primary.Stats.DurationMs)
	if s.cfg.Candidate.Diagnostics {
		log.Debug("run diagnostics",
			"intents_active", primary.Stats.IntentsActive,
			"edges", primary.Stats.Edges,
			"candidate_cycles", primary.Stats.CandidateCycles,
			"bucket", decision.Bucket,
			"delta_score_sum_scaled", deltaScaled,
			"delta_known", deltaKnown)
	}

	return result, nil
}

// shadowDiff produces the diff record for a shadow-enabled run, executing
// the candidate when routing did not already do so. Failures become error
// diff entries, never errors.
func (s *Service) shadowDiff(runID string, input engine.Input, baseline, candidate *engine.Result) *canary.DiffRecord {
	if s.cfg.Shadow.ForceError {
		d := canary.ErrorDiff(runID, &engine.Failure{
			Code:    engine.FailureForced,
			Version: engine.VersionCandidate,
			Message: "forced shadow failure",
		})
		return &d
	}

	if candidate == nil {
		var fail *engine.Failure
		candidate, fail = s.runner.Run(input, s.cfg.Candidate)
		if fail != nil {
			d := canary.ErrorDiff(runID, fail)
			return &d
		}
	}

	d := canary.BuildDiff(runID, baseline, candidate)
	return &d
}

// persist writes all of the run's records. Write order puts the run row
// first so proposal foreign keys resolve.
func (s *Service) persist(ctx context.Context, req RunRequest, result *RunResult, primaryVersion string, diff *canary.DiffRecord, record canary.DecisionRecord, state canary.RollbackState) error {
	run := store.MatchingRun{
		RunID:          result.RunID,
		Actor:          req.Actor,
		RequestedAt:    req.Now,
		PrimaryVersion: primaryVersion,
		Stats:          result.Stats,
		ProposalIDs:    result.ProposalIDs,
	}
	if err := s.store.WriteMatchingRun(ctx, run); err != nil {
		return err
	}
	if err := s.store.WriteProposals(ctx, result.RunID, result.Proposals); err != nil {
		return err
	}
	if diff != nil {
		if err := s.store.WriteShadowDiff(ctx, *diff, s.cfg.Shadow.MaxDiffs); err != nil {
			return err
		}
	}
	if err := s.store.WriteDecision(ctx, record, s.cfg.MaxDecisions); err != nil {
		return err
	}
	return s.store.SaveRollbackState(ctx, s.cfg.Scope, state)
}

// ResetRollback clears the scope's rollback latch and evidence window.
func (s *Service) ResetRollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadRollbackState(ctx, s.cfg.Scope)
	if err != nil {
		return fmt.Errorf("reset rollback: %w", err)
	}
	if state.Active {
		s.log.Info("rollback latch cleared by operator reset",
			"reason_code", state.ReasonCode,
			"activating_run_id", state.ActivatingRunID)
	}

	canary.NewController(&state).Reset()
	if err := s.store.SaveRollbackState(ctx, s.cfg.Scope, state); err != nil {
		return fmt.Errorf("reset rollback: %w", err)
	}
	return nil
}

func proposalIDs(proposals []swap.Proposal) []string {
	ids := make([]string, len(proposals))
	for i, p := range proposals {
		ids[i] = p.ID
	}
	return ids
}
