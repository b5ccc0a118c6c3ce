// Package engine implements the cycle-matching engine: compatibility graph
// construction, bounded simple-cycle enumeration, and greedy vertex-disjoint
// proposal selection, wrapped by a versioned runner.
//
// The engine is pure and synchronous. One run is one call; there is no
// shared mutable state beyond the call stack, and the only clock dependence
// is the cooperative wall-clock budget inside the enumerator. Given
// identical inputs and no budget exhaustion, two runs produce identical
// proposals in identical order.
//
// Enumeration limits (timeout, explored-edge budget) are NOT errors. They
// are reported as result flags and the run still returns a possibly smaller
// proposal set. The runner returns a *Failure only for forced test-hook
// failures and genuine internal faults; callers translate those into a
// fallback decision rather than propagating them.
package engine
