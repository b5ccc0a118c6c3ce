package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/roach88/ringswap/internal/engine"
	"github.com/roach88/ringswap/internal/swap"
)

// ErrInvalidRequest marks input validation failures. Invalid requests are
// rejected before any state mutation: no run id is consumed, no sample is
// ingested, nothing is persisted.
var ErrInvalidRequest = errors.New("invalid request")

// RunRequest is the boundary contract for one matching run. Asset values
// arrive as plain numbers (e.g. USD) and are scaled to the fixed-point unit
// during validation.
type RunRequest struct {
	Intents        []swap.SwapIntent
	AssetValuesUSD map[string]float64
	EdgeOverrides  []swap.EdgeOverride
	Now            time.Time
	MaxProposals   int
	Actor          swap.ActorRef
	IdempotencyKey string
}

// RunResult is what callers get back: the primary output of the run.
// Canary, shadow, and rollback outcomes are observable through the audit
// trail, never through this surface.
type RunResult struct {
	RunID       string          `json:"run_id"`
	Stats       engine.Stats    `json:"stats"`
	ProposalIDs []string        `json:"proposal_ids"`
	Proposals   []swap.Proposal `json:"proposals"`
}

// validate checks the request and returns the asset values in the
// fixed-point unit.
func validate(req RunRequest) (map[string]int64, error) {
	if req.MaxProposals <= 0 {
		return nil, fmt.Errorf("%w: max_proposals must be positive, got %d", ErrInvalidRequest, req.MaxProposals)
	}
	if req.Actor.ID == "" {
		return nil, fmt.Errorf("%w: actor id is required", ErrInvalidRequest)
	}

	seen := make(map[string]bool, len(req.Intents))
	for _, intent := range req.Intents {
		if intent.ID == "" {
			return nil, fmt.Errorf("%w: intent with empty id", ErrInvalidRequest)
		}
		if seen[intent.ID] {
			return nil, fmt.Errorf("%w: duplicate intent id %q", ErrInvalidRequest, intent.ID)
		}
		seen[intent.ID] = true
	}

	values := make(map[string]int64, len(req.AssetValuesUSD))
	for asset, v := range req.AssetValuesUSD {
		if asset == "" {
			return nil, fmt.Errorf("%w: asset value with empty asset id", ErrInvalidRequest)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: asset %q value is not finite", ErrInvalidRequest, asset)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: asset %q value is negative", ErrInvalidRequest, asset)
		}
		values[asset] = swap.ScaleValue(v)
	}
	return values, nil
}
