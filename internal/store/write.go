package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/swap"
)

// WriteMatchingRun inserts a run summary. Uses ON CONFLICT(run_id) DO
// NOTHING for idempotency - duplicate run ids are silently ignored.
func (s *Store) WriteMatchingRun(ctx context.Context, run MatchingRun) error {
	proposalIDs, err := marshalStringList(run.ProposalIDs)
	if err != nil {
		return fmt.Errorf("write matching run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matching_runs
		(run_id, seq, actor_type, actor_id, requested_at, primary_version,
		 intents_active, edges, candidate_cycles, candidate_proposals,
		 selected_proposals, timed_out, limited, duration_ms, proposal_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		run.RunID,
		runSeq(run.RunID),
		run.Actor.Type,
		run.Actor.ID,
		run.RequestedAt.UTC().Format(time.RFC3339),
		run.PrimaryVersion,
		run.Stats.IntentsActive,
		run.Stats.Edges,
		run.Stats.CandidateCycles,
		run.Stats.CandidateProposals,
		run.Stats.SelectedProposals,
		run.Stats.TimedOut,
		run.Stats.Limited,
		run.Stats.DurationMs,
		proposalIDs,
	)
	if err != nil {
		return fmt.Errorf("write matching run: %w", err)
	}
	return nil
}

// WriteProposals inserts the selected proposals of a run. Idempotent on
// proposal id. The owning run must already exist (foreign key constraint).
func (s *Store) WriteProposals(ctx context.Context, runID string, proposals []swap.Proposal) error {
	for _, p := range proposals {
		participants, err := marshalParticipants(p.Participants)
		if err != nil {
			return fmt.Errorf("write proposal %s: %w", p.ID, err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO proposals
			(id, run_id, cycle_key, cycle_digest, participants,
			 confidence_bps, score_scaled, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			p.ID,
			runID,
			p.CycleKey,
			p.CycleDigest,
			participants,
			p.ConfidenceBps,
			p.ScoreScaled,
			string(p.Status),
		)
		if err != nil {
			return fmt.Errorf("write proposal %s: %w", p.ID, err)
		}
	}
	return nil
}

// WriteShadowDiff upserts one shadow diff record keyed by run id and prunes
// the history to the newest keep records by run sequence. keep <= 0 skips
// pruning.
func (s *Store) WriteShadowDiff(ctx context.Context, rec canary.DiffRecord, keep int) error {
	text, err := marshalDiff(rec)
	if err != nil {
		return fmt.Errorf("write shadow diff: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shadow_diffs (run_id, seq, record)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`, rec.RunID, runSeq(rec.RunID), text)
	if err != nil {
		return fmt.Errorf("write shadow diff: %w", err)
	}

	if keep > 0 {
		if err := s.pruneBySeq(ctx, "shadow_diffs", keep); err != nil {
			return fmt.Errorf("prune shadow diffs: %w", err)
		}
	}
	return nil
}

// WriteDecision upserts one canary decision record keyed by run id and
// prunes the history to the newest keep records by run sequence.
// keep <= 0 skips pruning.
func (s *Store) WriteDecision(ctx context.Context, rec canary.DecisionRecord, keep int) error {
	text, digest, err := marshalDecision(rec)
	if err != nil {
		return fmt.Errorf("write decision: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO canary_decisions (run_id, seq, digest, record)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`, rec.RunID, runSeq(rec.RunID), digest, text)
	if err != nil {
		return fmt.Errorf("write decision: %w", err)
	}

	if keep > 0 {
		if err := s.pruneBySeq(ctx, "canary_decisions", keep); err != nil {
			return fmt.Errorf("prune decisions: %w", err)
		}
	}
	return nil
}

// SaveRollbackState upserts the rollback state singleton for a scope.
// Unlike run-keyed records this genuinely replaces: the latch mutates
// across runs.
func (s *Store) SaveRollbackState(ctx context.Context, scope string, state canary.RollbackState) error {
	text, err := marshalRollbackState(state)
	if err != nil {
		return fmt.Errorf("save rollback state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rollback_state (scope, record)
		VALUES (?, ?)
		ON CONFLICT(scope) DO UPDATE SET record = excluded.record
	`, scope, text)
	if err != nil {
		return fmt.Errorf("save rollback state: %w", err)
	}
	return nil
}

// pruneBySeq deletes everything but the newest keep rows of a run-keyed
// table, ordered by sequence then run id for a stable tie-break.
func (s *Store) pruneBySeq(ctx context.Context, table string, keep int) error {
	// table is always a literal from this package, never user input.
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE run_id NOT IN (
			SELECT run_id FROM %s
			ORDER BY seq DESC, run_id COLLATE BINARY DESC
			LIMIT ?
		)
	`, table, table)
	_, err := s.db.ExecContext(ctx, query, keep)
	return err
}
