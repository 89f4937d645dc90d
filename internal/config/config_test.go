package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lattice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "OPENROUTER_API_KEY", cfg.OpenRouter.APIKeyEnv)
	assert.Empty(t, cfg.APIKeys)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
api_keys: [sk-demo1, sk-demo2]
default_model: deepseek/deepseek-chat-v3-0324:free
redis:
  addr: localhost:6379
  ttl: 24h
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"sk-demo1", "sk-demo2"}, cfg.APIKeys)
	assert.Equal(t, "deepseek/deepseek-chat-v3-0324:free", cfg.DefaultModel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "addr: \":9090\"\n")
	t.Setenv("LATTICE_ADDR", ":7070")
	t.Setenv("LATTICE_API_KEYS", "sk-a, sk-b")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, []string{"sk-a", "sk-b"}, cfg.APIKeys)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "addr: [not a string\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ValidationRejectsEmptyModel(t *testing.T) {
	path := writeConfig(t, "default_model: \"\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_model")
}

func TestOpenRouterKey(t *testing.T) {
	cfg := Default()

	_, err := cfg.OpenRouterKey()
	if os.Getenv("OPENROUTER_API_KEY") == "" {
		assert.Error(t, err)
	}

	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	key, err := cfg.OpenRouterKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}
