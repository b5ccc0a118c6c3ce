package store

import (
	"time"

	"github.com/roach88/ringswap/internal/engine"
	"github.com/roach88/ringswap/internal/swap"
)

// MatchingRun is the externally visible summary of one invocation, created
// once per run and immutable thereafter.
type MatchingRun struct {
	RunID          string        `json:"run_id"`
	Actor          swap.ActorRef `json:"actor"`
	RequestedAt    time.Time     `json:"requested_at"`
	PrimaryVersion string        `json:"primary_version"`
	Stats          engine.Stats  `json:"stats"`
	ProposalIDs    []string      `json:"proposal_ids"`
}
