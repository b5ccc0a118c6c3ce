// Package swap defines the core domain types for the barter matching engine:
// swap intents, edge overrides, and proposals, together with the canonical
// JSON serialization and content-addressed hashing used for deterministic
// cycle identity and audit snapshots.
//
// Types in this package are plain values. Intents and overrides are created
// by upstream intent management and are read-only here; proposals are minted
// by the engine. Nothing in this package touches storage or configuration.
package swap
