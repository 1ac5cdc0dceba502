// Package config provides hierarchical configuration loading for TaskScheduler.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"fmt"
	"time"
)

// Config holds all runtime configuration for the task scheduler service.
type Config struct {
	Server      Server      `yaml:"server"`
	Storage     Storage     `yaml:"storage"`
	Logging     Logging     `yaml:"logging"`
	NATS        NATS        `yaml:"nats"`
	Breaker     Breaker     `yaml:"breaker"`
	Idempotency Idempotency `yaml:"idempotency"`
	RateLimit   RateLimit   `yaml:"rate_limit"`
	MCP         MCP         `yaml:"mcp"`
	OTEL        OTEL        `yaml:"otel"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Storage holds the daily task file layout.
type Storage struct {
	BaseDir  string `yaml:"base_dir"` // one <YYYY-MM-DD>/tasks.json per day below this
	Timezone string `yaml:"timezone"` // IANA name; empty = process local time
}

// Location resolves Timezone.
func (s Storage) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("storage.timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// NATS holds NATS JetStream configuration. An empty URL disables event publishing.
type NATS struct {
	URL string `yaml:"url"`
}

// Breaker holds circuit breaker configuration for event publishing.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Idempotency holds Idempotency-Key replay configuration.
type Idempotency struct {
	Enabled     bool          `yaml:"enabled"`
	TTL         time.Duration `yaml:"ttl"`
	CacheSizeMB int64         `yaml:"cache_size_mb"`
	Shared      bool          `yaml:"shared"` // back the in-process cache with a NATS KV bucket when NATS is configured
}

// RateLimit holds per-IP API rate limiting configuration.
type RateLimit struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// MCP holds the Model Context Protocol endpoint configuration.
type MCP struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// OTEL holds OpenTelemetry export configuration.
type OTEL struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"` // host:port of the OTLP gRPC collector
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "3000",
			CORSOrigin: "*",
		},
		Storage: Storage{
			BaseDir: "tasks",
		},
		Logging: Logging{
			Level:   "info",
			Service: "taskscheduler",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Idempotency: Idempotency{
			Enabled:     true,
			TTL:         24 * time.Hour,
			CacheSizeMB: 16,
			Shared:      true,
		},
		RateLimit: RateLimit{
			Enabled: true,
			RPS:     20,
			Burst:   40,
		},
		MCP: MCP{
			Enabled: true,
			Name:    "taskscheduler",
		},
		OTEL: OTEL{
			Endpoint:    "localhost:4317",
			Insecure:    true,
			ServiceName: "taskscheduler",
		},
	}
}
