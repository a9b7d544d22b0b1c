// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (plus config.<APP_ENVIRONMENT>.yaml when present), then
// applies .env and environment overrides such as LLM_API_KEY.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	registerDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
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

// registerDefaults also makes every key visible to AutomaticEnv during Unmarshal.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "restaurant-agent")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 20000)
	v.SetDefault("server.write_timeout", 20000)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 30000)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.retry_delay", 1000)
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.max_connections", 25)
	v.SetDefault("database.postgres.max_idle", 5)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.mysql.host", "")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.user", "")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.max_connections", 25)
	v.SetDefault("database.mysql.max_idle", 5)
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("llm.enabled", true)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 150)

	v.SetDefault("agent.overall_timeout", 15000)
	v.SetDefault("agent.call_timeout", 8000)
	v.SetDefault("agent.rate_limit.max_requests", 10)
	v.SetDefault("agent.rate_limit.window", 60000)
	v.SetDefault("agent.session_idle_ttl", 1800000)
	v.SetDefault("agent.sweep_interval", 60000)
	v.SetDefault("agent.timezone", "Local")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 300000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("observability.service_name", "restaurant-agent")
	v.SetDefault("observability.metrics_enabled", true)
}

func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
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
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values. Unset variables expand
// to "" so that overrideEmptyConfig and validation see them as missing.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.LLM.APIKey = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.MySQL.User == "" {
		cfg.Database.MySQL.User = os.Getenv("DB_USER")
	}
	if cfg.Database.MySQL.Password == "" {
		cfg.Database.MySQL.Password = os.Getenv("DB_PASSWORD")
	}
}

// applyDefaults fills values that cannot be expressed as viper defaults.
func applyDefaults(cfg *Config) {
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
}

// validateConfig reports every problem at once.
func validateConfig(cfg *Config) error {
	var result *multierror.Error

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.Postgres.Host == "" {
			result = multierror.Append(result, errors.New("database.postgres.host is required"))
		}
		if cfg.Database.Postgres.Database == "" {
			result = multierror.Append(result, errors.New("database.postgres.database is required"))
		}
		if cfg.Database.Postgres.User == "" {
			result = multierror.Append(result, errors.New("database.postgres.user is required"))
		}
	case DriverMySQL:
		if cfg.Database.MySQL.Host == "" {
			result = multierror.Append(result, errors.New("database.mysql.host is required"))
		}
		if cfg.Database.MySQL.Database == "" {
			result = multierror.Append(result, errors.New("database.mysql.database is required"))
		}
		if cfg.Database.MySQL.User == "" {
			result = multierror.Append(result, errors.New("database.mysql.user is required"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMySQL, cfg.Database.Driver))
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		result = multierror.Append(result, errors.New("database.redis.address is required when cache is enabled"))
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		result = multierror.Append(result, errors.New("camunda.broker_address is required when camunda is enabled"))
	}

	if cfg.LLM.Enabled {
		if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
			result = multierror.Append(result, errors.New("llm.api_key is required unless llm.base_url points at a keyless endpoint"))
		}
		if cfg.LLM.Model == "" {
			result = multierror.Append(result, errors.New("llm.model is required"))
		}
	}

	if cfg.Agent.OverallTimeout <= 0 {
		result = multierror.Append(result, errors.New("agent.overall_timeout must be positive"))
	}
	if cfg.Agent.CallTimeout <= 0 || cfg.Agent.CallTimeout > cfg.Agent.OverallTimeout {
		result = multierror.Append(result, errors.New("agent.call_timeout must be positive and not exceed agent.overall_timeout"))
	}
	if cfg.Agent.RateLimit.MaxRequests <= 0 || cfg.Agent.RateLimit.Window <= 0 {
		result = multierror.Append(result, errors.New("agent.rate_limit.max_requests and window must be positive"))
	}
	if cfg.Agent.Timezone != "" && cfg.Agent.Timezone != "Local" {
		if _, err := time.LoadLocation(cfg.Agent.Timezone); err != nil {
			result = multierror.Append(result, fmt.Errorf("agent.timezone: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
