// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and lets environment variables override any key (completion.api_key is
// COMPLETION_API_KEY).
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	bindEnv(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile reads a single YAML file; used by the CLI --config flag and tests.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	bindEnv(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"completion.provider", "completion.base_url", "completion.api_key", "completion.model",
		"analytics.store",
		"database.postgres.host", "database.postgres.user", "database.postgres.password", "database.postgres.database",
		"database.redis.address", "database.redis.password",
		"camunda.enabled", "camunda.broker_address",
		"server.address",
		"logging.level", "logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	// Fills an absent key only; an explicit temperature of 0 is kept.
	v.SetDefault("completion.temperature", 0.2)
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in YAML string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		// An unset variable expands to "", so defaults and provider key
		// fallbacks still apply.
		v.Set(key, os.ExpandEnv(strVal))
	}
}

// overrideEmptyConfig picks up the provider-native key variables so an
// existing ANTHROPIC_API_KEY or GEMINI_API_KEY works without extra wiring.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Completion.APIKey != "" {
		return
	}
	switch cfg.Completion.Provider {
	case "anthropic":
		cfg.Completion.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.Completion.APIKey = val
		} else {
			cfg.Completion.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case "gateway":
		cfg.Completion.APIKey = os.Getenv("GENAI_API_KEY")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "scheme-finder"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Completion.Provider == "" {
		cfg.Completion.Provider = "gateway"
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 4096
	}
	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = 60000
	}
	if cfg.Completion.RateLimitBackoff == 0 {
		cfg.Completion.RateLimitBackoff = 2000
	}
	if cfg.Completion.Model == "" {
		switch cfg.Completion.Provider {
		case "anthropic":
			cfg.Completion.Model = "claude-3-5-haiku-latest"
		case "gemini":
			cfg.Completion.Model = "gemini-2.0-flash"
		}
	}

	if cfg.Analytics.Store == "" {
		cfg.Analytics.Store = "memory"
	}
	if cfg.Analytics.BufferSize == 0 {
		cfg.Analytics.BufferSize = 256
	}
	if cfg.Analytics.WriteTimeout == 0 {
		cfg.Analytics.WriteTimeout = 3000
	}
	if cfg.Analytics.RedisStream == "" {
		cfg.Analytics.RedisStream = "analytics:events"
	}

	if cfg.Discovery.DefaultMaxResults == 0 {
		cfg.Discovery.DefaultMaxResults = 20
	}
	if cfg.Discovery.ResolveBatchLimit == 0 {
		cfg.Discovery.ResolveBatchLimit = 4
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 120000
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Completion.Provider {
	case "gateway":
		if cfg.Completion.BaseURL == "" {
			return fmt.Errorf("completion.base_url is required for the gateway provider")
		}
	case "anthropic", "gemini":
		if cfg.Completion.APIKey == "" {
			return fmt.Errorf("completion.api_key is required for the %s provider", cfg.Completion.Provider)
		}
	default:
		return fmt.Errorf("completion.provider %q is not supported", cfg.Completion.Provider)
	}

	if cfg.Completion.Temperature < 0 || cfg.Completion.Temperature > 1 {
		return fmt.Errorf("completion.temperature must be within [0,1]")
	}

	switch cfg.Analytics.Store {
	case "postgres":
		if cfg.Database.Postgres.Host == "" || cfg.Database.Postgres.Database == "" || cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres host, database and user are required for the postgres analytics store")
		}
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis analytics store")
		}
	case "memory", "none":
	default:
		return fmt.Errorf("analytics.store %q is not supported", cfg.Analytics.Store)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
