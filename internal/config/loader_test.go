package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Server.Port)
	}
	if cfg.Storage.BaseDir != "tasks" {
		t.Errorf("expected base dir tasks, got %s", cfg.Storage.BaseDir)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("expected NATS disabled by default, got %q", cfg.NATS.URL)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
storage:
  base_dir: "/var/lib/tasks"
  timezone: "Asia/Seoul"
logging:
  level: "debug"
idempotency:
  ttl: 1h
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.Storage.BaseDir != "/var/lib/tasks" {
		t.Errorf("expected base dir /var/lib/tasks, got %s", cfg.Storage.BaseDir)
	}
	if cfg.Storage.Timezone != "Asia/Seoul" {
		t.Errorf("expected timezone Asia/Seoul, got %s", cfg.Storage.Timezone)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Idempotency.TTL != time.Hour {
		t.Errorf("expected idempotency ttl 1h, got %v", cfg.Idempotency.TTL)
	}
	// Unchanged fields keep defaults
	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("expected default breaker failures, got %d", cfg.Breaker.MaxFailures)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TASKSCHEDULER_PORT", "7070")
	t.Setenv("TASKSCHEDULER_TASKS_DIR", "/data/tasks")
	t.Setenv("TASKSCHEDULER_TIMEZONE", "UTC")
	t.Setenv("TASKSCHEDULER_LOG_LEVEL", "warn")
	t.Setenv("TASKSCHEDULER_BREAKER_TIMEOUT", "1m")
	t.Setenv("TASKSCHEDULER_IDEMPOTENCY_ENABLED", "false")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("TASKSCHEDULER_RATE_LIMIT_RPS", "2.5")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Storage.BaseDir != "/data/tasks" {
		t.Errorf("expected base dir /data/tasks, got %s", cfg.Storage.BaseDir)
	}
	if cfg.Storage.Timezone != "UTC" {
		t.Errorf("expected timezone UTC, got %s", cfg.Storage.Timezone)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Breaker.Timeout != time.Minute {
		t.Errorf("expected breaker timeout 1m, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Idempotency.Enabled {
		t.Error("expected idempotency disabled")
	}
	if cfg.NATS.URL != "nats://nats:4222" {
		t.Errorf("expected NATS URL, got %s", cfg.NATS.URL)
	}
	if cfg.RateLimit.RPS != 2.5 {
		t.Errorf("expected rate limit rps 2.5, got %v", cfg.RateLimit.RPS)
	}
}

func TestEnvInvalidValuesIgnored(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TASKSCHEDULER_BREAKER_MAX_FAILURES", "many")
	t.Setenv("TASKSCHEDULER_BREAKER_TIMEOUT", "soon")
	t.Setenv("TASKSCHEDULER_LOG_ASYNC", "maybe")

	loadEnv(&cfg)

	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("invalid int should be ignored, got %d", cfg.Breaker.MaxFailures)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("invalid duration should be ignored, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Logging.Async {
		t.Error("invalid bool should be ignored")
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "empty port",
			modify: func(c *Config) { c.Server.Port = "" },
			errMsg: "server.port is required",
		},
		{
			name:   "empty base dir",
			modify: func(c *Config) { c.Storage.BaseDir = "" },
			errMsg: "storage.base_dir is required",
		},
		{
			name:   "unknown timezone",
			modify: func(c *Config) { c.Storage.Timezone = "Mars/Olympus" },
			errMsg: `storage.timezone "Mars/Olympus"`,
		},
		{
			name:   "zero breaker failures",
			modify: func(c *Config) { c.Breaker.MaxFailures = 0 },
			errMsg: "breaker.max_failures must be >= 1",
		},
		{
			name:   "zero idempotency cache",
			modify: func(c *Config) { c.Idempotency.CacheSizeMB = 0 },
			errMsg: "idempotency.cache_size_mb must be >= 1",
		},
		{
			name:   "zero rate limit burst",
			modify: func(c *Config) { c.RateLimit.Burst = 0 },
			errMsg: "rate_limit.rps and rate_limit.burst must be positive",
		},
		{
			name: "otel without endpoint",
			modify: func(c *Config) {
				c.OTEL.Enabled = true
				c.OTEL.Endpoint = ""
			},
			errMsg: "otel.endpoint is required when otel is enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := validate(&cfg)
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.errMsg)
			}
			if !strings.HasPrefix(err.Error(), tt.errMsg) {
				t.Errorf("expected %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestStorageLocation(t *testing.T) {
	loc, err := Storage{}.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("empty timezone should be Local, got %v, %v", loc, err)
	}

	loc, err = Storage{Timezone: "UTC"}.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v, %v", loc, err)
	}
}

// Full LoadFrom pipeline: defaults < YAML < environment variables.
func TestLoadFromFullHierarchy(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
server:
  port: "9090"
logging:
  level: "debug"
storage:
  base_dir: "/from/yaml"
`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKSCHEDULER_PORT", "7070")
	t.Setenv("TASKSCHEDULER_LOG_LEVEL", "warn")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("env should override YAML: got port %q, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override YAML: got level %q, want warn", cfg.Logging.Level)
	}
	if cfg.Storage.BaseDir != "/from/yaml" {
		t.Errorf("YAML should override defaults: got base dir %q", cfg.Storage.BaseDir)
	}
}

func TestLoadFromValidationFailure(t *testing.T) {
	t.Setenv("TASKSCHEDULER_TIMEZONE", "Nowhere/Special")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected validation error")
	}
}
