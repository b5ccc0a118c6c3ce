package swap

import "time"

// IntentStatus is the lifecycle state of a swap intent.
// Only active intents participate in matching.
type IntentStatus string

const (
	IntentActive    IntentStatus = "active"
	IntentCancelled IntentStatus = "cancelled"
)

// ActorRef identifies the party that owns an intent or requested a run.
// Type distinguishes actor namespaces (e.g., "user", "partner", "system")
// so that ids from different namespaces never collide in bucketing.
type ActorRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// SwapIntent is one party's offer/want declaration.
//
// Offered and Wanted hold asset ids in declaration order. Order matters for
// deterministic scoring iteration, not for matching semantics: an edge
// exists if ANY wanted asset of the source appears in the target's offers.
//
// The optional provider/persona/policy references are carried opaquely onto
// proposal participants; the engine never interprets them.
type SwapIntent struct {
	ID      string       `json:"id"`
	Actor   ActorRef     `json:"actor"`
	Offered []string     `json:"offered"`
	Wanted  []string     `json:"wanted"`
	Status  IntentStatus `json:"status"`

	LiquidityProviderID string `json:"liquidity_provider_id,omitempty"`
	PersonaID           string `json:"persona_id,omitempty"`
	PolicyID            string `json:"policy_id,omitempty"`
}

// IsActive reports whether the intent may participate in matching.
func (i SwapIntent) IsActive() bool {
	return i.Status == IntentActive
}

// OverrideStatus is the lifecycle state of an edge override.
type OverrideStatus string

const (
	OverrideActive   OverrideStatus = "active"
	OverrideInactive OverrideStatus = "inactive"
)

// EdgeOverride is an explicit directed compatibility hint between two
// intents: the source wants what the target effectively offers. Overrides
// supplement edges inferred from offer/want overlap; they never remove one.
type EdgeOverride struct {
	FromIntentID string         `json:"from_intent_id"`
	ToIntentID   string         `json:"to_intent_id"`
	Status       OverrideStatus `json:"status"`

	// ExpiresAt bounds the override's validity. The zero value means the
	// override never expires.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsActive reports whether the override applies at the given instant.
// An override expiring exactly at now is treated as expired.
func (e EdgeOverride) IsActive(now time.Time) bool {
	if e.Status != OverrideActive {
		return false
	}
	if !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt) {
		return false
	}
	return true
}

// ProposalStatus is the lifecycle state of a proposal. Proposals are created
// active; settlement services own any further transitions.
type ProposalStatus string

const ProposalActive ProposalStatus = "active"

// Participant is one intent's slot in a proposal, carrying the references
// settlement needs without another intent lookup.
type Participant struct {
	IntentID string   `json:"intent_id"`
	Actor    ActorRef `json:"actor"`

	LiquidityProviderID string `json:"liquidity_provider_id,omitempty"`
	PersonaID           string `json:"persona_id,omitempty"`
	PolicyID            string `json:"policy_id,omitempty"`
}

// Proposal is a selected cycle promoted to a candidate executable swap.
//
// ConfidenceBps and ScoreScaled are fixed-point basis-point values (see
// ScaleValue). All score comparisons downstream (selection ordering, shadow
// diffing, rollback deltas) are exact integer arithmetic; the float view is
// presentation only.
type Proposal struct {
	ID            string         `json:"id"`
	CycleKey      string         `json:"cycle_key"`
	CycleDigest   string         `json:"cycle_digest"`
	Participants  []Participant  `json:"participants"`
	ConfidenceBps int64          `json:"confidence_bps"`
	ScoreScaled   int64          `json:"score_scaled"`
	Status        ProposalStatus `json:"status"`
}

// Confidence returns the 0-1 float view of ConfidenceBps.
func (p Proposal) Confidence() float64 {
	return float64(p.ConfidenceBps) / 10000.0
}

// IntentIDs returns the participant intent ids in cycle order.
func (p Proposal) IntentIDs() []string {
	ids := make([]string, len(p.Participants))
	for i, part := range p.Participants {
		ids[i] = part.IntentID
	}
	return ids
}

// ScaleFactor converts between float values and the fixed-point integer
// unit used everywhere scores are compared (1.0 -> 10000).
const ScaleFactor = 10000

// ScaleValue converts a float asset value or confidence to the fixed-point
// unit. Rounds half away from zero.
func ScaleValue(v float64) int64 {
	if v >= 0 {
		return int64(v*ScaleFactor + 0.5)
	}
	return int64(v*ScaleFactor - 0.5)
}
