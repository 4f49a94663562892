package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateYAML(t *testing.T) {
	path := writeConfig(t, "cuts.yaml", "thresholds: [5, 2]\nallow_list: JPsi\n")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "triggers 4")
}

func TestValidateCUEJSON(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "scenarios", "mc_jpsi.cue")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Digest)
	assert.Contains(t, result.AllowList, "JPsi")
}

func TestValidateSameContentSameDigest(t *testing.T) {
	a := writeConfig(t, "a.yaml", "thresholds: [5, 2]\n")
	b := writeConfig(t, "b.yaml", "thresholds: [2, 5, 5]\nworkers: 8\n")

	var ra, rb ValidationResult
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), a)
	require.NoError(t, err)
	decodeResponse(t, out, &ra)
	out, err = execute(t, NewValidateCommand(&RootOptions{Format: "json"}), b)
	require.NoError(t, err)
	decodeResponse(t, out, &rb)

	assert.Equal(t, ra.Digest, rb.Digest, "thresholds are normalised and workers are not part of the digest")
}

func TestValidateInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown field", "c.yaml", "treshold: [1]\n", "treshold"},
		{"empty estimator", "c.yaml", "centrality_estimator: \"\"\n", "centrality_estimator"},
		{"unsupported extension", "c.toml", "thresholds = [1]\n", "unsupported config format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗")
			assert.Contains(t, out, tt.wantErr)
		})
	}
}

func TestValidateInvalidConfigJSON(t *testing.T) {
	path := writeConfig(t, "c.yaml", "centrality_estimator: \"\"\n")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
	assert.Equal(t, "centrality_estimator", resp.Error.Details)
	assert.False(t, result.Valid)
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/cuts.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
