// Package canary implements the progressive rollout and rollback controller
// for the candidate matching engine: deterministic traffic bucketing, the
// per-run routing decision, shadow diff recording, the sliding-window
// rollback latch, and the bounded decision audit log.
//
// The routing and bucketing functions are pure; repeated calls with
// identical inputs yield identical decisions, which is required for
// reproducible testing and for idempotent retries to land in the same
// bucket. The stateful pieces (RollbackState, AuditLog, DiffHistory) are
// owned by a single scope and mutated by at most one run at a time; callers
// targeting multi-writer concurrency must serialize around them.
package canary
