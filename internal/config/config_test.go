/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AIMaxRequests != 2 {
		t.Fatalf("unexpected AI max requests: %d", cfg.AIMaxRequests)
	}
	if cfg.AIWindow != 60*time.Second {
		t.Fatalf("unexpected AI window: %v", cfg.AIWindow)
	}
	if cfg.DBBackend != DatabaseSQLite {
		t.Fatalf("unexpected default backend: %q", cfg.DBBackend)
	}
	if cfg.AIEnabled() {
		t.Fatal("AI should be disabled without a credential")
	}
}

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("SOUNDLOG_GEMINI_API_KEY", "test-key")
	t.Setenv("SOUNDLOG_AI_MAX_REQUESTS", "5")
	t.Setenv("SOUNDLOG_AI_WINDOW_SECONDS", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.AIEnabled() {
		t.Fatal("expected AI to be enabled")
	}
	if cfg.AIMaxRequests != 5 {
		t.Fatalf("unexpected AI max requests: %d", cfg.AIMaxRequests)
	}
	if cfg.AIWindow != 2*time.Minute {
		t.Fatalf("unexpected AI window: %v", cfg.AIWindow)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SOUNDLOG_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail for unknown backend")
	}
}

func TestLoadProductionRequiresSpotifyCredentials(t *testing.T) {
	t.Setenv("SOUNDLOG_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config load to fail without Spotify credentials")
	}

	t.Setenv("SOUNDLOG_SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SOUNDLOG_SPOTIFY_CLIENT_SECRET", "secret")
	if _, err := Load(); err != nil {
		t.Fatalf("expected production config load with credentials to succeed: %v", err)
	}
}
