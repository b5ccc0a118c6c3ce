package engine

import (
	"strings"
	"time"
)

// Cycle is a rotation-normalized candidate cycle. Members begin at the
// lexicographically smallest intent id, so two enumerations of the same
// ring compare equal regardless of which node discovered it.
type Cycle struct {
	Members []string
	Key     string
}

// EnumerationResult reports the discovered cycles plus budget accounting.
// Limited and TimedOut may both be true on the same run.
type EnumerationResult struct {
	Cycles        []Cycle
	EdgesExplored int64
	Limited       bool
	TimedOut      bool
}

// Enumerator performs depth-bounded simple-cycle search under the config's
// explored-edge and wall-clock budgets.
//
// The wall-clock budget is cooperative: elapsed time is checked at DFS
// re-entry, never preemptively, so overruns beyond TimeoutMs stay small.
// The now function defaults to time.Now and is injectable for tests.
type Enumerator struct {
	cfg Config
	now func() time.Time
}

// NewEnumerator creates an enumerator using the real clock.
func NewEnumerator(cfg Config) *Enumerator {
	return &Enumerator{cfg: cfg, now: time.Now}
}

// NewEnumeratorWithClock creates an enumerator with an injected clock.
// Used by tests to exercise the timeout path deterministically.
func NewEnumeratorWithClock(cfg Config, now func() time.Time) *Enumerator {
	return &Enumerator{cfg: cfg, now: now}
}

// Enumerate returns all simple cycles of length within
// [MinCycleLength, MaxCycleLength], deduplicated by canonical key.
//
// A config with min > max returns an empty result without faulting;
// upstream validation should prevent it, but the enumerator must not
// depend on that.
//
// Each ring is discovered exactly once: DFS starts from every node in
// sorted order and only visits ids greater than the start, so the start
// node is always the lexicographically smallest member of any cycle it
// finds. Canonical keys deduplicate any remaining repeats.
func (e *Enumerator) Enumerate(g *Graph) EnumerationResult {
	res := EnumerationResult{Cycles: []Cycle{}}
	if e.cfg.MinCycleLength > e.cfg.MaxCycleLength || e.cfg.MaxCycleLength < 1 {
		return res
	}

	start := e.now()
	seen := make(map[string]bool)

	var deadline time.Time
	if e.cfg.TimeoutMs > 0 {
		deadline = start.Add(time.Duration(e.cfg.TimeoutMs) * time.Millisecond)
	}

	s := &searchState{
		g:        g,
		cfg:      e.cfg,
		now:      e.now,
		deadline: deadline,
		seen:     seen,
		result:   &res,
		onPath:   make(map[string]bool),
	}

	for _, root := range g.Nodes() {
		if res.Limited || res.TimedOut {
			break
		}
		s.root = root
		s.path = s.path[:0]
		s.path = append(s.path, root)
		s.onPath[root] = true
		s.dfs(root)
		delete(s.onPath, root)
	}

	return res
}

type searchState struct {
	g        *Graph
	cfg      Config
	now      func() time.Time
	deadline time.Time
	seen     map[string]bool
	result   *EnumerationResult

	root   string
	path   []string
	onPath map[string]bool
}

// dfs explores successors of current. The explored-edge counter increments
// on every edge considered; once it exceeds the budget the whole search
// stops with Limited set. The timeout check happens once per re-entry.
func (s *searchState) dfs(current string) {
	if !s.deadline.IsZero() && s.now().After(s.deadline) {
		s.result.TimedOut = true
		return
	}

	for _, next := range s.g.Neighbors(current) {
		if s.result.Limited || s.result.TimedOut {
			return
		}

		s.result.EdgesExplored++
		if s.cfg.MaxCyclesExplored >= 0 && s.result.EdgesExplored > s.cfg.MaxCyclesExplored {
			s.result.Limited = true
			return
		}

		if next == s.root {
			if len(s.path) >= s.cfg.MinCycleLength && len(s.path) <= s.cfg.MaxCycleLength {
				s.record(s.path)
			}
			continue
		}
		// Only walk into ids greater than the root; smaller ids belong to
		// cycles already owned by an earlier root.
		if next <= s.root || s.onPath[next] {
			continue
		}
		if len(s.path) >= s.cfg.MaxCycleLength {
			continue
		}

		s.path = append(s.path, next)
		s.onPath[next] = true
		s.dfs(next)
		s.path = s.path[:len(s.path)-1]
		delete(s.onPath, next)
	}
}

func (s *searchState) record(path []string) {
	members, key := CanonicalCycle(path)
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.result.Cycles = append(s.result.Cycles, Cycle{Members: members, Key: key})
}

// CanonicalCycle rotates a closed walk so it begins at its lexicographically
// smallest member and returns the rotated members plus the canonical key.
// [A,B,C] and [B,C,A] describe the same ring and produce the same key.
func CanonicalCycle(members []string) ([]string, string) {
	if len(members) == 0 {
		return []string{}, ""
	}

	smallest := 0
	for i, m := range members {
		if m < members[smallest] {
			smallest = i
		}
	}

	rotated := make([]string, 0, len(members))
	rotated = append(rotated, members[smallest:]...)
	rotated = append(rotated, members[:smallest]...)

	return rotated, strings.Join(rotated, ">")
}
