package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ringswap/internal/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ringswap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scope: staging
max_proposals: 3
candidate:
  max_cycle_length: 5
  timeout_ms: 250
canary:
  enabled: true
  rollout_bps: 2500
  salt: exp-7
  rollback_window_runs: 4
  max_error_rate_bps: 1000
shadow:
  enabled: true
  max_diffs: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Scope)
	assert.Equal(t, 3, cfg.MaxProposals)
	assert.Equal(t, engine.VersionCandidate, cfg.Candidate.Version)
	assert.Equal(t, 5, cfg.Candidate.MaxCycleLength)
	assert.Equal(t, int64(250), cfg.Candidate.TimeoutMs)
	assert.True(t, cfg.Canary.Enabled)
	assert.Equal(t, int64(2500), cfg.Canary.RolloutBps)
	assert.Equal(t, "exp-7", cfg.Canary.Salt)
	assert.Equal(t, 4, cfg.Canary.RollbackWindowRuns)
	assert.Equal(t, int64(1000), cfg.Canary.MaxErrorRateBps)
	assert.True(t, cfg.Shadow.Enabled)
	assert.Equal(t, 20, cfg.Shadow.MaxDiffs)

	// Untouched sections keep their defaults.
	assert.False(t, cfg.Primary.Enabled)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RejectsOutOfRangeBps(t *testing.T) {
	path := writeConfig(t, `
canary:
  rollout_bps: 10001
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, `
log_level: verbose
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsBadCycleLength(t *testing.T) {
	path := writeConfig(t, `
candidate:
  min_cycle_length: 1
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
scope: from-file
canary:
  rollout_bps: 100
`)
	t.Setenv("RINGSWAP_SCOPE", "from-env")
	t.Setenv("RINGSWAP_CANARY_ENABLED", "true")
	t.Setenv("RINGSWAP_CANARY_ROLLOUT_BPS", "5000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Scope)
	assert.True(t, cfg.Canary.Enabled)
	assert.Equal(t, int64(5000), cfg.Canary.RolloutBps)
}

func TestLoad_EnvValidatedLikeFileValues(t *testing.T) {
	t.Setenv("RINGSWAP_CANARY_ROLLOUT_BPS", "99999")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
