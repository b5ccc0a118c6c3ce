package store

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/swap"
)

// runSeq resolves the sequence column value for a run id. Non-parseable ids
// get the maximum sequence so bounded histories treat them as newest.
func runSeq(runID string) int64 {
	if seq, ok := swap.RunIDSequence(runID); ok {
		return seq
	}
	return math.MaxInt64
}

// marshalParticipants renders a proposal's participants as canonical JSON
// TEXT for storage.
func marshalParticipants(participants []swap.Participant) (string, error) {
	list := make([]any, len(participants))
	for i, p := range participants {
		m := map[string]any{
			"intent_id": p.IntentID,
			"actor": map[string]any{
				"type": p.Actor.Type,
				"id":   p.Actor.ID,
			},
		}
		if p.LiquidityProviderID != "" {
			m["liquidity_provider_id"] = p.LiquidityProviderID
		}
		if p.PersonaID != "" {
			m["persona_id"] = p.PersonaID
		}
		if p.PolicyID != "" {
			m["policy_id"] = p.PolicyID
		}
		list[i] = m
	}
	data, err := swap.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal participants: %w", err)
	}
	return string(data), nil
}

func unmarshalParticipants(text string) ([]swap.Participant, error) {
	var participants []swap.Participant
	if err := json.Unmarshal([]byte(text), &participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	return participants, nil
}

// marshalStringList renders a string slice as canonical JSON TEXT.
func marshalStringList(list []string) (string, error) {
	data, err := swap.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

func unmarshalStringList(text string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// marshalDecision renders a decision record as canonical JSON TEXT plus its
// content digest for idempotent writes.
func marshalDecision(rec canary.DecisionRecord) (text, digest string, err error) {
	m := rec.CanonicalMap()
	data, err := swap.MarshalCanonical(m)
	if err != nil {
		return "", "", fmt.Errorf("marshal decision: %w", err)
	}
	digest, err = swap.DecisionDigest(m)
	if err != nil {
		return "", "", fmt.Errorf("marshal decision: %w", err)
	}
	return string(data), digest, nil
}

func unmarshalDecision(text string) (canary.DecisionRecord, error) {
	var rec canary.DecisionRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return canary.DecisionRecord{}, fmt.Errorf("unmarshal decision: %w", err)
	}
	return rec, nil
}

func marshalDiff(rec canary.DiffRecord) (string, error) {
	data, err := swap.MarshalCanonical(rec.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal diff: %w", err)
	}
	return string(data), nil
}

func unmarshalDiff(text string) (canary.DiffRecord, error) {
	var rec canary.DiffRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return canary.DiffRecord{}, fmt.Errorf("unmarshal diff: %w", err)
	}
	return rec, nil
}

func marshalRollbackState(state canary.RollbackState) (string, error) {
	data, err := swap.MarshalCanonical(state.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("marshal rollback state: %w", err)
	}
	return string(data), nil
}

func unmarshalRollbackState(text string) (canary.RollbackState, error) {
	var state canary.RollbackState
	if err := json.Unmarshal([]byte(text), &state); err != nil {
		return canary.RollbackState{}, fmt.Errorf("unmarshal rollback state: %w", err)
	}
	if state.Window == nil {
		state.Window = []canary.Sample{}
	}
	return state, nil
}
