package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONEnvelope(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.JSON(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Error)
}

func TestOutputFormatter_Textf(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	formatter.Textf("run %s complete", "run-000001")
	assert.Equal(t, "run run-000001 complete\n", buf.String())
}

func TestExitError_Unwrap(t *testing.T) {
	sentinel := errors.New("boom")
	err := WrapExitError(ExitCommandError, "opening database", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "opening database")
	assert.Contains(t, err.Error(), "boom")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil wrapped command error", WrapExitError(ExitCommandError, "bad path", errors.New("no such file")), ExitCommandError},
		{"domain failure", NewExitError(ExitFailure, "rejected"), ExitFailure},
		{"plain error defaults to failure", errors.New("unknown"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
