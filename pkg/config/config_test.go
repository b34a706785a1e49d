package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pokeloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaultsWhenOmitted(t *testing.T) {
	path := writeTempConfig(t, `
http:
  port: "9090"
kv:
  addr: "redis:6379"
agents:
  - id: agent-1
    model_id: openai/gpt-4o
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "redis:6379", cfg.KVAddr)
	assert.Len(t, cfg.Agents, 1)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_PROVIDER_KEY", "secret-value")
	path := writeTempConfig(t, `
http:
  port: "8080"
provider:
  endpoint: "https://provider.example"
  api_key: "${TEST_PROVIDER_KEY}"
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "secret-value", cfg.ProviderAPIKey)
}

func TestLoad_MissingRequiredFieldFailsValidation(t *testing.T) {
	path := writeTempConfig(t, `
kv:
  addr: "redis:6379"
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLoad_DuplicateAgentIDFails(t *testing.T) {
	path := writeTempConfig(t, `
http:
  port: "8080"
agents:
  - id: agent-1
    model_id: openai/gpt-4o
  - id: agent-1
    model_id: anthropic/claude-3-5-sonnet
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate agent id")
}

func TestLoad_MissingFileReturnsLoadError(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}
