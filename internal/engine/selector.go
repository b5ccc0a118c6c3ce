package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/ringswap/internal/swap"
)

// neutralConfidenceBps is assigned when no asset values are available for a
// cycle: absence of valuation evidence is neither good nor bad.
const neutralConfidenceBps = 5000

// Candidate is a scored cycle awaiting selection.
type Candidate struct {
	Cycle         Cycle
	ScoreScaled   int64
	ConfidenceBps int64
}

// ScoreCycles scores each enumerated cycle against the asset-value map.
//
// Per edge (A,B) in the ring, every asset A wants that B offers contributes
// its scaled value to the sum; assets missing from the value map contribute
// nothing (they were matched by id, not by value). Confidence is the
// fraction of matched assets that carried a value, in basis points, or the
// neutral default when none did. Override-only edges match zero assets and
// therefore also score neutral.
//
// Scoring has no randomness and no clock dependence; identical inputs
// produce identical scores.
func ScoreCycles(g *Graph, cycles []Cycle, values map[string]int64) []Candidate {
	candidates := make([]Candidate, 0, len(cycles))
	for _, c := range cycles {
		valueSum := int64(0)
		matched := 0
		valued := 0

		n := len(c.Members)
		for i := 0; i < n; i++ {
			from, _ := g.Intent(c.Members[i])
			to, _ := g.Intent(c.Members[(i+1)%n])
			for _, asset := range matchedAssets(from, to) {
				matched++
				if v, ok := values[asset]; ok {
					valued++
					valueSum += v
				}
			}
		}

		confidence := int64(neutralConfidenceBps)
		if valued > 0 {
			confidence = int64(10000 * valued / matched)
		}

		candidates = append(candidates, Candidate{
			Cycle:         c,
			ScoreScaled:   valueSum + confidence,
			ConfidenceBps: confidence,
		})
	}
	return candidates
}

// matchedAssets returns the assets from wants, in want order, that to
// offers. Duplicate wants are deduplicated.
func matchedAssets(from, to swap.SwapIntent) []string {
	var out []string
	seen := make(map[string]bool)
	for _, wanted := range from.Wanted {
		if seen[wanted] {
			continue
		}
		for _, offered := range to.Offered {
			if wanted == offered {
				seen[wanted] = true
				out = append(out, wanted)
				break
			}
		}
	}
	return out
}

// SelectProposals greedily picks a vertex-disjoint, value-maximizing subset
// of candidates, capped at maxProposals.
//
// Order: descending score, ties broken by ascending canonical cycle key for
// determinism. A candidate is accepted iff none of its member intents were
// consumed by a previously accepted candidate in this pass.
//
// Guarantee: output proposals are pairwise vertex-disjoint - no intent id
// appears in two proposals from the same run.
func SelectProposals(g *Graph, candidates []Candidate, maxProposals int, gen IDGenerator) ([]swap.Proposal, error) {
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ScoreScaled != ordered[j].ScoreScaled {
			return ordered[i].ScoreScaled > ordered[j].ScoreScaled
		}
		return ordered[i].Cycle.Key < ordered[j].Cycle.Key
	})

	proposals := []swap.Proposal{}
	consumed := make(map[string]bool)

	for _, cand := range ordered {
		if len(proposals) >= maxProposals {
			break
		}
		if anyConsumed(consumed, cand.Cycle.Members) {
			continue
		}

		proposal, err := buildProposal(g, cand, gen)
		if err != nil {
			return nil, err
		}
		for _, id := range cand.Cycle.Members {
			consumed[id] = true
		}
		proposals = append(proposals, proposal)
	}

	return proposals, nil
}

func anyConsumed(consumed map[string]bool, members []string) bool {
	for _, id := range members {
		if consumed[id] {
			return true
		}
	}
	return false
}

func buildProposal(g *Graph, cand Candidate, gen IDGenerator) (swap.Proposal, error) {
	digest, err := swap.CycleDigest(cand.Cycle.Members)
	if err != nil {
		return swap.Proposal{}, fmt.Errorf("build proposal: %w", err)
	}

	participants := make([]swap.Participant, len(cand.Cycle.Members))
	for i, id := range cand.Cycle.Members {
		intent, _ := g.Intent(id)
		participants[i] = swap.Participant{
			IntentID:            intent.ID,
			Actor:               intent.Actor,
			LiquidityProviderID: intent.LiquidityProviderID,
			PersonaID:           intent.PersonaID,
			PolicyID:            intent.PolicyID,
		}
	}

	return swap.Proposal{
		ID:            gen.Generate(),
		CycleKey:      cand.Cycle.Key,
		CycleDigest:   digest,
		Participants:  participants,
		ConfidenceBps: cand.ConfidenceBps,
		ScoreScaled:   cand.ScoreScaled,
		Status:        swap.ProposalActive,
	}, nil
}
