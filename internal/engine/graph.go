package engine

import (
	"sort"
	"time"

	"github.com/roach88/ringswap/internal/swap"
)

// Graph is the directed compatibility graph over active intents.
//
// An edge A->B exists if any of A's wanted assets appears in B's offers, or
// an active, unexpired edge override asserts the link. Invariants: no
// self-loops; edges only between distinct, currently-active intents.
//
// Node and neighbor iteration order is sorted by intent id so that
// enumeration is deterministic for identical inputs.
type Graph struct {
	nodes     map[string]swap.SwapIntent
	neighbors map[string][]string
	order     []string
	edgeCount int
}

// BuildGraph constructs the compatibility graph from active intents plus
// explicit edge overrides, evaluated at the given instant.
//
// Cancelled intents, self-referential overrides, expired overrides, and
// overrides whose endpoints are not currently active are all excluded.
// Graph construction never consults asset values; cycle existence is
// independent of value availability.
func BuildGraph(intents []swap.SwapIntent, overrides []swap.EdgeOverride, now time.Time) *Graph {
	g := &Graph{
		nodes:     make(map[string]swap.SwapIntent),
		neighbors: make(map[string][]string),
	}

	for _, intent := range intents {
		if !intent.IsActive() {
			continue
		}
		g.nodes[intent.ID] = intent
	}

	g.order = make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		g.order = append(g.order, id)
	}
	sort.Strings(g.order)

	adjacency := make(map[string]map[string]bool, len(g.nodes))

	// Inferred edges: source wants something the target offers.
	for _, fromID := range g.order {
		from := g.nodes[fromID]
		for _, toID := range g.order {
			if fromID == toID {
				continue
			}
			if wantsSatisfiedBy(from, g.nodes[toID]) {
				addEdge(adjacency, fromID, toID)
			}
		}
	}

	// Override edges supplement inferred ones; they never remove an edge.
	for _, o := range overrides {
		if !o.IsActive(now) {
			continue
		}
		if o.FromIntentID == o.ToIntentID {
			continue
		}
		if _, ok := g.nodes[o.FromIntentID]; !ok {
			continue
		}
		if _, ok := g.nodes[o.ToIntentID]; !ok {
			continue
		}
		addEdge(adjacency, o.FromIntentID, o.ToIntentID)
	}

	for fromID, targets := range adjacency {
		sorted := make([]string, 0, len(targets))
		for toID := range targets {
			sorted = append(sorted, toID)
		}
		sort.Strings(sorted)
		g.neighbors[fromID] = sorted
		g.edgeCount += len(sorted)
	}

	return g
}

func addEdge(adjacency map[string]map[string]bool, from, to string) {
	if adjacency[from] == nil {
		adjacency[from] = make(map[string]bool)
	}
	adjacency[from][to] = true
}

// wantsSatisfiedBy reports whether any wanted asset of from appears in
// to's offers.
func wantsSatisfiedBy(from, to swap.SwapIntent) bool {
	for _, wanted := range from.Wanted {
		for _, offered := range to.Offered {
			if wanted == offered {
				return true
			}
		}
	}
	return false
}

// NodeCount returns the number of active intents in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// Nodes returns intent ids in sorted order. Callers must not mutate.
func (g *Graph) Nodes() []string { return g.order }

// Neighbors returns the sorted successor ids of an intent.
// Callers must not mutate.
func (g *Graph) Neighbors(id string) []string { return g.neighbors[id] }

// Intent returns the intent for an id present in the graph.
func (g *Graph) Intent(id string) (swap.SwapIntent, bool) {
	intent, ok := g.nodes[id]
	return intent, ok
}

// HasEdge reports whether the directed edge from->to exists.
func (g *Graph) HasEdge(from, to string) bool {
	for _, n := range g.neighbors[from] {
		if n == to {
			return true
		}
	}
	return false
}
