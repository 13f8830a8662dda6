// internal/common/config/config.go
package config

import "fmt"

type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Server     ServerConfig            `mapstructure:"server"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Completion CompletionConfig        `mapstructure:"completion"`
	Analytics  AnalyticsConfig         `mapstructure:"analytics"`
	Discovery  DiscoveryConfig         `mapstructure:"discovery"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// CompletionConfig selects and tunes the external completion service.
// Provider is one of "gateway", "anthropic" or "gemini".
type CompletionConfig struct {
	Provider         string  `mapstructure:"provider"`
	BaseURL          string  `mapstructure:"base_url"`
	APIKey           string  `mapstructure:"api_key"`
	Model            string  `mapstructure:"model"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	Temperature      float64 `mapstructure:"temperature"`
	Timeout          int     `mapstructure:"timeout"`            // milliseconds
	RateLimitBackoff int     `mapstructure:"rate_limit_backoff"` // milliseconds
}

// AnalyticsConfig selects the append-only store behind the analytics sink.
// Store is one of "postgres", "redis", "memory" or "none".
type AnalyticsConfig struct {
	Store        string `mapstructure:"store"`
	BufferSize   int    `mapstructure:"buffer_size"`
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	RedisStream  string `mapstructure:"redis_stream"`
	RedisMaxLen  int64  `mapstructure:"redis_max_len"`
}

type DiscoveryConfig struct {
	DefaultMaxResults int `mapstructure:"default_max_results"`
	ResolveBatchLimit int `mapstructure:"resolve_batch_limit"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
