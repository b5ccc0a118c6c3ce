// Package store provides durable storage for matching runs, proposals,
// shadow diff records, canary decision records, and the per-scope rollback
// state singleton.
//
// It is the concrete realization of the abstract key-value state store the
// core depends on: SQLite with WAL mode, a single writer connection, and
// idempotent ON CONFLICT writes keyed by run id. Record payloads are stored
// as canonical JSON so replays and golden comparisons are byte-stable.
package store
