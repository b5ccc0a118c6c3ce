package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no scenario files found")

	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_DeterministicAcrossExecutions(t *testing.T) {
	scenario, err := LoadScenario("testdata/three_party_ring.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	snapA, err := first.Snapshot()
	require.NoError(t, err)
	snapB, err := second.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, string(snapA), string(snapB))
}

func TestRun_InvalidConfigRejected(t *testing.T) {
	scenario, err := LoadScenario("testdata/three_party_ring.yaml")
	require.NoError(t, err)
	scenario.Config = map[string]any{
		"canary": map[string]any{"rollout_bps": 20000},
	}

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
