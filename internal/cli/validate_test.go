package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTestdata = "../config/testdata/"

func TestValidate_ValidFiles(t *testing.T) {
	for _, name := range []string{"valid.yaml", "valid.cue", "valid.json"} {
		t.Run(name, func(t *testing.T) {
			out, err := executeRoot(t, "validate", configTestdata+name)
			require.NoError(t, err)
			assert.Contains(t, out, "✓")
			assert.Contains(t, out, "policy snapshot, 2 shadow slot(s)")
		})
	}
}

func TestValidate_JSON(t *testing.T) {
	out, err := executeRoot(t, "validate", configTestdata+"valid.yaml", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "snapshot", resp.Data.Policy)
	assert.Len(t, resp.Data.Shadows, 2)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		file     string
		code     string
		exitCode int
	}{
		{"zero_divisor.yaml", "SCHEMA_VIOLATION", ExitFailure},
		{"unknown_field.yaml", "PARSE_FAILED", ExitFailure},
		{"broken.cue", "PARSE_FAILED", ExitFailure},
		{"config.toml", "UNSUPPORTED_FORMAT", ExitCommandError},
		{"missing.yaml", "NOT_FOUND", ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			out, err := executeRoot(t, "validate", configTestdata+tt.file)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, "✗ Validation failed")
			assert.Contains(t, out, tt.code)
		})
	}
}

func TestValidate_JSONFailure(t *testing.T) {
	out, err := executeRoot(t, "validate", configTestdata+"zero_divisor.yaml", "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SCHEMA_VIOLATION", resp.Error.Code)
}
