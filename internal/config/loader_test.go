package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndLegacyEnv(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("CATALOG_BASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("API_GATEWAY_URL", "http://gateway:8000/api/v1/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash-001", cfg.LLM.Model)
	assert.Equal(t, "http://gateway:8000/api/v1", cfg.Catalog.BaseURL)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.RequestBudget())
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, DefaultSystemInstruction, cfg.LLM.SystemInstruction)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIKey")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
llm:
  provider: openai
  api_key: file-key
  model: gpt-4o-mini
  base_url: https://generativelanguage.googleapis.com/v1beta/openai/
  timeout: 5s
catalog:
  base_url: http://catalog.local/api/v1
auth:
  enabled: true
  jwt_secret: s3cret
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "http://catalog.local/api/v1", cfg.Catalog.BaseURL)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: "5000"},
			LLM:     LLMConfig{Provider: "gemini", APIKey: "k", Model: "m"},
			Catalog: CatalogConfig{BaseURL: "http://localhost:8000/api/v1"},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown_provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }, wantErr: true},
		{name: "bad_catalog_url", mutate: func(c *Config) { c.Catalog.BaseURL = "not a url" }, wantErr: true},
		{name: "auth_without_secret", mutate: func(c *Config) { c.Auth.Enabled = true }, wantErr: true},
		{name: "auth_with_secret", mutate: func(c *Config) { c.Auth.Enabled = true; c.Auth.JWTSecret = "x" }},
		{name: "non_numeric_port", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: true},
		{name: "write_timeout_shorter_than_request", mutate: func(c *Config) {
			c.Server.WriteTimeout = 60 * time.Second
			c.LLM.Timeout = 60 * time.Second
			c.Catalog.Timeout = 10 * time.Second
		}, wantErr: true},
		{name: "write_timeout_covers_request", mutate: func(c *Config) {
			c.Server.WriteTimeout = 141 * time.Second
			c.LLM.Timeout = 60 * time.Second
			c.Catalog.Timeout = 10 * time.Second
		}},
		{name: "no_write_timeout", mutate: func(c *Config) { c.LLM.Timeout = time.Hour }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
