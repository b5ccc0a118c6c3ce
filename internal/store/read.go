package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/swap"
)

// ErrNotFound is returned by single-record reads when no row matches.
var ErrNotFound = errors.New("not found")

// ReadMatchingRun returns one run summary by id, or ErrNotFound.
func (s *Store) ReadMatchingRun(ctx context.Context, runID string) (MatchingRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, actor_type, actor_id, requested_at, primary_version,
		       intents_active, edges, candidate_cycles, candidate_proposals,
		       selected_proposals, timed_out, limited, duration_ms, proposal_ids
		FROM matching_runs WHERE run_id = ?
	`, runID)

	var (
		run         MatchingRun
		requestedAt string
		proposalIDs string
	)
	err := row.Scan(
		&run.RunID,
		&run.Actor.Type,
		&run.Actor.ID,
		&requestedAt,
		&run.PrimaryVersion,
		&run.Stats.IntentsActive,
		&run.Stats.Edges,
		&run.Stats.CandidateCycles,
		&run.Stats.CandidateProposals,
		&run.Stats.SelectedProposals,
		&run.Stats.TimedOut,
		&run.Stats.Limited,
		&run.Stats.DurationMs,
		&proposalIDs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return MatchingRun{}, fmt.Errorf("read matching run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return MatchingRun{}, fmt.Errorf("read matching run %s: %w", runID, err)
	}

	run.RequestedAt, err = time.Parse(time.RFC3339, requestedAt)
	if err != nil {
		return MatchingRun{}, fmt.Errorf("read matching run %s: parse requested_at: %w", runID, err)
	}
	run.ProposalIDs, err = unmarshalStringList(proposalIDs)
	if err != nil {
		return MatchingRun{}, fmt.Errorf("read matching run %s: %w", runID, err)
	}
	return run, nil
}

// ReadProposals returns the proposals of one run ordered by id. Returns an
// empty slice when the run has none.
func (s *Store) ReadProposals(ctx context.Context, runID string) ([]swap.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cycle_key, cycle_digest, participants,
		       confidence_bps, score_scaled, status
		FROM proposals WHERE run_id = ?
		ORDER BY id COLLATE BINARY
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read proposals for %s: %w", runID, err)
	}
	defer rows.Close()

	proposals := []swap.Proposal{}
	for rows.Next() {
		var (
			p            swap.Proposal
			participants string
			status       string
		)
		if err := rows.Scan(&p.ID, &p.CycleKey, &p.CycleDigest, &participants,
			&p.ConfidenceBps, &p.ScoreScaled, &status); err != nil {
			return nil, fmt.Errorf("read proposals for %s: %w", runID, err)
		}
		p.Status = swap.ProposalStatus(status)
		p.Participants, err = unmarshalParticipants(participants)
		if err != nil {
			return nil, fmt.Errorf("read proposals for %s: %w", runID, err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read proposals for %s: %w", runID, err)
	}
	return proposals, nil
}

// ReadDecisions returns the newest limit decision records, oldest first so
// the slice reads chronologically. limit <= 0 returns the full history.
func (s *Store) ReadDecisions(ctx context.Context, limit int) ([]canary.DecisionRecord, error) {
	records, err := s.readRecords(ctx, "canary_decisions", limit)
	if err != nil {
		return nil, fmt.Errorf("read decisions: %w", err)
	}
	out := make([]canary.DecisionRecord, 0, len(records))
	for _, text := range records {
		rec, err := unmarshalDecision(text)
		if err != nil {
			return nil, fmt.Errorf("read decisions: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadShadowDiffs returns the newest limit shadow diff records, oldest
// first. limit <= 0 returns the full history.
func (s *Store) ReadShadowDiffs(ctx context.Context, limit int) ([]canary.DiffRecord, error) {
	records, err := s.readRecords(ctx, "shadow_diffs", limit)
	if err != nil {
		return nil, fmt.Errorf("read shadow diffs: %w", err)
	}
	out := make([]canary.DiffRecord, 0, len(records))
	for _, text := range records {
		rec, err := unmarshalDiff(text)
		if err != nil {
			return nil, fmt.Errorf("read shadow diffs: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadRollbackState returns the persisted rollback state for a scope, or the
// zero latch (inactive, empty window) when none has been saved yet.
func (s *Store) LoadRollbackState(ctx context.Context, scope string) (canary.RollbackState, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM rollback_state WHERE scope = ?`, scope).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return canary.RollbackState{Window: []canary.Sample{}}, nil
	}
	if err != nil {
		return canary.RollbackState{}, fmt.Errorf("load rollback state: %w", err)
	}
	state, err := unmarshalRollbackState(text)
	if err != nil {
		return canary.RollbackState{}, fmt.Errorf("load rollback state: %w", err)
	}
	return state, nil
}

// MaxRunSequence returns the largest parseable run sequence across all
// recorded runs, so a restarted service can resume minting run ids without
// collisions. Returns 0 when no runs exist.
func (s *Store) MaxRunSequence(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM matching_runs WHERE seq < ?
	`, int64(math.MaxInt64)).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max run sequence: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

// readRecords pulls the newest limit JSON records from a run-keyed table and
// reverses them into chronological order.
func (s *Store) readRecords(ctx context.Context, table string, limit int) ([]string, error) {
	// table is always a literal from this package, never user input.
	query := fmt.Sprintf(`
		SELECT record FROM %s
		ORDER BY seq DESC, run_id COLLATE BINARY DESC
	`, table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		records = append(records, text)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
