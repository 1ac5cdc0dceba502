package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "taskscheduler.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if v := os.Getenv("TASKSCHEDULER_CONFIG"); v != "" {
		path = v
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TASKSCHEDULER_PORT")
	setString(&cfg.Server.CORSOrigin, "TASKSCHEDULER_CORS_ORIGIN")
	setString(&cfg.Storage.BaseDir, "TASKSCHEDULER_TASKS_DIR")
	setString(&cfg.Storage.Timezone, "TASKSCHEDULER_TIMEZONE")
	setString(&cfg.Logging.Level, "TASKSCHEDULER_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TASKSCHEDULER_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TASKSCHEDULER_LOG_ASYNC")
	setString(&cfg.NATS.URL, "NATS_URL")
	setInt(&cfg.Breaker.MaxFailures, "TASKSCHEDULER_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TASKSCHEDULER_BREAKER_TIMEOUT")
	setBool(&cfg.Idempotency.Enabled, "TASKSCHEDULER_IDEMPOTENCY_ENABLED")
	setDuration(&cfg.Idempotency.TTL, "TASKSCHEDULER_IDEMPOTENCY_TTL")
	setInt64(&cfg.Idempotency.CacheSizeMB, "TASKSCHEDULER_IDEMPOTENCY_CACHE_MB")
	setBool(&cfg.Idempotency.Shared, "TASKSCHEDULER_IDEMPOTENCY_SHARED")
	setBool(&cfg.RateLimit.Enabled, "TASKSCHEDULER_RATE_LIMIT_ENABLED")
	setFloat(&cfg.RateLimit.RPS, "TASKSCHEDULER_RATE_LIMIT_RPS")
	setInt(&cfg.RateLimit.Burst, "TASKSCHEDULER_RATE_LIMIT_BURST")
	setBool(&cfg.MCP.Enabled, "TASKSCHEDULER_MCP_ENABLED")
	setBool(&cfg.OTEL.Enabled, "TASKSCHEDULER_OTEL_ENABLED")
	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTEL.Insecure, "TASKSCHEDULER_OTEL_INSECURE")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Storage.BaseDir == "" {
		return errors.New("storage.base_dir is required")
	}
	if _, err := cfg.Storage.Location(); err != nil {
		return err
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Idempotency.Enabled && cfg.Idempotency.CacheSizeMB < 1 {
		return errors.New("idempotency.cache_size_mb must be >= 1")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst < 1) {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive")
	}
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint == "" {
		return errors.New("otel.endpoint is required when otel is enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
