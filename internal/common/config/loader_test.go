// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
completion:
  provider: gateway
  base_url: http://genai.local
workers:
  discover-schemes:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "scheme-finder", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 4096, cfg.Completion.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Completion.Temperature, 1e-9)
	assert.Equal(t, 2000, cfg.Completion.RateLimitBackoff)
	assert.Equal(t, "memory", cfg.Analytics.Store)
	assert.Equal(t, 256, cfg.Analytics.BufferSize)
	assert.Zero(t, cfg.Analytics.RedisMaxLen, "analytics stream is not trimmed unless capped")
	assert.Equal(t, 20, cfg.Discovery.DefaultMaxResults)
	assert.Equal(t, 5, cfg.Workers["discover-schemes"].MaxJobsActive)
	assert.Equal(t, 120000, cfg.Workers["discover-schemes"].Timeout)
}

func TestLoadFromFile_ExplicitZeroTemperature(t *testing.T) {
	path := writeConfig(t, `
completion:
  provider: gateway
  base_url: http://genai.local
  temperature: 0
analytics:
  redis_max_len: 5000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Completion.Temperature)
	assert.EqualValues(t, 5000, cfg.Analytics.RedisMaxLen)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("COMPLETION_PROVIDER", "anthropic")
	t.Setenv("COMPLETION_API_KEY", "sk-test")
	path := writeConfig(t, `
completion:
  provider: gateway
  base_url: http://genai.local
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Completion.Provider)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.Completion.Model)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("SCHEME_GATEWAY_URL", "http://expanded.local")
	path := writeConfig(t, `
completion:
  provider: gateway
  base_url: ${SCHEME_GATEWAY_URL}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded.local", cfg.Completion.BaseURL)
}

func TestLoadFromFile_UnsetPlaceholderIsEmpty(t *testing.T) {
	path := writeConfig(t, `
completion:
  provider: gateway
  base_url: ${SCHEME_FINDER_UNSET_URL}
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion.base_url")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid gateway",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "gateway without base url",
			mutate:  func(cfg *Config) { cfg.Completion.BaseURL = "" },
			wantErr: "completion.base_url",
		},
		{
			name: "gemini without key",
			mutate: func(cfg *Config) {
				cfg.Completion.Provider = "gemini"
				cfg.Completion.APIKey = ""
			},
			wantErr: "completion.api_key",
		},
		{
			name:    "unknown provider",
			mutate:  func(cfg *Config) { cfg.Completion.Provider = "mystery" },
			wantErr: "not supported",
		},
		{
			name:    "temperature out of range",
			mutate:  func(cfg *Config) { cfg.Completion.Temperature = 1.5 },
			wantErr: "temperature",
		},
		{
			name:    "postgres store without host",
			mutate:  func(cfg *Config) { cfg.Analytics.Store = "postgres" },
			wantErr: "database.postgres",
		},
		{
			name:    "redis store without address",
			mutate:  func(cfg *Config) { cfg.Analytics.Store = "redis" },
			wantErr: "database.redis.address",
		},
		{
			name:    "unknown store",
			mutate:  func(cfg *Config) { cfg.Analytics.Store = "s3" },
			wantErr: "analytics.store",
		},
		{
			name:    "camunda without broker",
			mutate:  func(cfg *Config) { cfg.Camunda.Enabled = true },
			wantErr: "camunda.broker_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Completion: CompletionConfig{Provider: "gateway", BaseURL: "http://genai.local"},
			}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"extract-profile": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "extract-profile"))
	assert.True(t, IsWorkerEnabled(cfg, "resolve-eligibility"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "extract-profile").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "resolve-eligibility").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "schemes", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=schemes sslmode=disable", p.GetDSN())
}
