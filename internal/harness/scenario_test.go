package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalRun = `
runs:
  - intents:
      - id: int-a
        actor: { id: u-a }
        offered: [asset-x]
        wanted: [asset-y]
    now: "2025-06-01T12:00:00Z"
    actor: { id: u-a }
`

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: minimal
description: smallest valid scenario
proposal_ids: [p1]
`+minimalRun)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", scenario.Name)
	require.Len(t, scenario.Runs, 1)
	assert.Equal(t, "user", scenario.Runs[0].Actor.ref().Type)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: has a misspelled key
proposal_ids: [p1]
rnus: []
`+minimalRun)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_RequiresProposalIDs(t *testing.T) {
	path := writeScenario(t, `
name: no-ids
description: missing proposal ids
`+minimalRun)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proposal_ids")
}

func TestLoadScenario_RejectsBadTimestamp(t *testing.T) {
	path := writeScenario(t, `
name: bad-now
description: unparseable run timestamp
proposal_ids: [p1]
runs:
  - intents:
      - id: int-a
        actor: { id: u-a }
        offered: [asset-x]
        wanted: [asset-y]
    now: "yesterday"
    actor: { id: u-a }
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_RejectsMissingActor(t *testing.T) {
	path := writeScenario(t, `
name: no-actor
description: run without an actor
proposal_ids: [p1]
runs:
  - intents:
      - id: int-a
        actor: { id: u-a }
        offered: [asset-x]
        wanted: [asset-y]
    now: "2025-06-01T12:00:00Z"
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "actor.id")
}
