// Package service orchestrates one matching run end to end: baseline
// execution, canary routing, candidate execution with fallback, shadow
// diffing, rollback-latch ingestion, audit recording, and persistence.
//
// The engine packages stay pure; everything stateful or effectful
// (run-id sequencing, the rollback latch, the store) is owned here, one
// Service per scope, serialized by an internal mutex.
package service
