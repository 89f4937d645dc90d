// Package config loads server configuration from a YAML file with
// environment overrides. Secrets (the OpenRouter key) come from the
// environment only and never live in the file.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// APIKeys are accepted bearer tokens. Empty disables auth.
	APIKeys []string `yaml:"api_keys"`

	// DefaultModel fills in when a request omits the model.
	DefaultModel string `yaml:"default_model"`

	OpenRouter  OpenRouterConfig  `yaml:"openrouter"`
	Redis       RedisConfig       `yaml:"redis"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// OpenRouterConfig configures the model client.
type OpenRouterConfig struct {
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// RedisConfig configures the optional Redis job store. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PersistenceConfig configures at-rest treatment of job records.
type PersistenceConfig struct {
	// EncryptionKeyEnv names the environment variable holding a
	// base64-encoded 32-byte AES key. Empty disables encryption.
	EncryptionKeyEnv string `yaml:"encryption_key_env"`

	// PIIPatterns are regexes masked out of persisted user queries.
	PIIPatterns []string `yaml:"pii_patterns"`
}

// EncryptionKey resolves and decodes the at-rest encryption key, or
// returns nil when encryption is disabled.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Persistence.EncryptionKeyEnv == "" {
		return nil, nil
	}
	raw := os.Getenv(c.Persistence.EncryptionKeyEnv)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", c.Persistence.EncryptionKeyEnv)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:         ":8080",
		DefaultModel: "anthropic/claude-3.7-sonnet",
		OpenRouter: OpenRouterConfig{
			APIKeyEnv: "OPENROUTER_API_KEY",
		},
	}
}

// Load reads the YAML file at path, layered over Default and under the
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LATTICE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("LATTICE_API_KEYS"); v != "" {
		c.APIKeys = splitKeys(v)
	}
	if v := os.Getenv("LATTICE_DEFAULT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("LATTICE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
		c.OpenRouter.BaseURL = v
	}
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model must not be empty")
	}
	if c.OpenRouter.APIKeyEnv == "" {
		return fmt.Errorf("openrouter.api_key_env must not be empty")
	}
	return nil
}

// OpenRouterKey resolves the model API key from the environment.
func (c *Config) OpenRouterKey() (string, error) {
	key := os.Getenv(c.OpenRouter.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.OpenRouter.APIKeyEnv)
	}
	return key, nil
}

func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
