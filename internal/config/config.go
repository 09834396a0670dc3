/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string

	DBBackend DatabaseBackend
	DBDSN     string

	// Spotify Web API credentials (client-credentials flow)
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyMarket       string

	// Gemini configuration. An empty API key disables AI features entirely;
	// every caller falls back to the deterministic taste heuristic.
	GeminiAPIKey string
	GeminiModel  string

	// AI quota governor tuning
	AIMaxRequests   int           // SOUNDLOG_AI_MAX_REQUESTS (default: 2)
	AIWindow        time.Duration // SOUNDLOG_AI_WINDOW_SECONDS (default: 60)
	ProviderTimeout time.Duration // per external call (default: 5s)

	// Result cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool

	// Event publishing
	NATSURL string // empty disables NATS, events stay on the in-memory bus

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("SOUNDLOG_ENV", "development"),
		HTTPBind:    getEnv("SOUNDLOG_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("SOUNDLOG_HTTP_PORT", 8080),
		MetricsBind: getEnv("SOUNDLOG_METRICS_BIND", "127.0.0.1:9000"),

		DBBackend: DatabaseBackend(getEnv("SOUNDLOG_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:     getEnv("SOUNDLOG_DB_DSN", "soundlog.db"),

		SpotifyClientID:     getEnv("SOUNDLOG_SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SOUNDLOG_SPOTIFY_CLIENT_SECRET", ""),
		SpotifyMarket:       getEnv("SOUNDLOG_SPOTIFY_MARKET", "US"),

		GeminiAPIKey: getEnv("SOUNDLOG_GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("SOUNDLOG_GEMINI_MODEL", "gemini-2.0-flash"),

		AIMaxRequests:   getEnvInt("SOUNDLOG_AI_MAX_REQUESTS", 2),
		AIWindow:        time.Duration(getEnvInt("SOUNDLOG_AI_WINDOW_SECONDS", 60)) * time.Second,
		ProviderTimeout: time.Duration(getEnvInt("SOUNDLOG_PROVIDER_TIMEOUT_SECONDS", 5)) * time.Second,

		RedisAddr:     getEnv("SOUNDLOG_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("SOUNDLOG_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("SOUNDLOG_REDIS_DB", 0),
		CacheEnabled:  getEnvBool("SOUNDLOG_CACHE_ENABLED", true),

		NATSURL: getEnv("SOUNDLOG_NATS_URL", ""),

		TracingEnabled:    getEnvBool("SOUNDLOG_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("SOUNDLOG_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("SOUNDLOG_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("SOUNDLOG_DB_DSN must be provided")
	}

	if cfg.AIMaxRequests < 1 {
		return nil, fmt.Errorf("SOUNDLOG_AI_MAX_REQUESTS must be at least 1")
	}

	if cfg.AIWindow < time.Second {
		return nil, fmt.Errorf("SOUNDLOG_AI_WINDOW_SECONDS must be at least 1")
	}

	if strings.EqualFold(cfg.Environment, "production") {
		if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
			return nil, fmt.Errorf("SOUNDLOG_SPOTIFY_CLIENT_ID and SOUNDLOG_SPOTIFY_CLIENT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// AIEnabled reports whether an AI credential is configured at all.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
