// Package config resolves the ringswap configuration once, at the process
// boundary, into an immutable validated struct. The core packages never read
// ambient configuration (files, environment) themselves.
//
// Configuration is a YAML file validated against an embedded CUE schema;
// a small set of RINGSWAP_* environment variables override file values
// before validation.
package config

import (
	"github.com/roach88/ringswap/internal/canary"
	"github.com/roach88/ringswap/internal/engine"
)

// Config is the fully resolved process configuration.
type Config struct {
	// Scope partitions runs: one rollback latch, one run-id sequence, and
	// one at-most-one-concurrent-run lock per scope.
	Scope string

	DBPath   string
	LogLevel string

	// MaxProposals caps the proposals selected per run.
	MaxProposals int

	// MaxDecisions bounds the decision audit history. 0 means unbounded.
	MaxDecisions int

	// Candidate drives the v2 engine. The baseline v1 configuration is
	// fixed (engine.BaselineConfig) and not configurable.
	Candidate engine.Config

	Primary canary.RolloutConfig
	Canary  canary.RolloutConfig
	Shadow  canary.ShadowConfig
}

// Default returns the configuration with every field at its schema default:
// canary and primary rollout disabled, shadow disabled, candidate engine
// matching the baseline bounds.
func Default() Config {
	return Config{
		Scope:        "default",
		DBPath:       "ringswap.db",
		LogLevel:     "info",
		MaxProposals: 10,
		MaxDecisions: 200,
		Candidate: engine.Config{
			Version:           engine.VersionCandidate,
			MinCycleLength:    2,
			MaxCycleLength:    3,
			MaxCyclesExplored: engine.Unbounded,
			TimeoutMs:         0,
		},
		Primary: defaultRollout(),
		Canary:  defaultRollout(),
		Shadow:  canary.ShadowConfig{MaxDiffs: 50},
	}
}

func defaultRollout() canary.RolloutConfig {
	return canary.RolloutConfig{
		RollbackWindowRuns:         10,
		MaxErrorRateBps:            0,
		MaxTimeoutRateBps:          10000,
		MaxLimitedRateBps:          10000,
		MinNonNegativeDeltaRateBps: 0,
	}
}
