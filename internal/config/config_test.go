package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_COOKIE_SECRET", testSecret)
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"
  login_per_minute: 3

content_api:
  endpoint: "https://cms.example.com/graphql"
  timeout: "7s"
  verify_timeout: "4s"

session:
  backend: "cookie"
  ttl: "720h"
  secure: false

sync:
  poll_interval: "15s"
  optimistic_ttl: "5m"

cors:
  allowed_origins: "https://blog.example.com, https://preview.example.com"

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	validEnv(t)
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.LoginPerMinute != 3 {
		t.Errorf("server.login_per_minute = %d, want 3", cfg.Server.LoginPerMinute)
	}
	if cfg.ContentAPI.Endpoint != "https://cms.example.com/graphql" {
		t.Errorf("content_api.endpoint = %q", cfg.ContentAPI.Endpoint)
	}
	if cfg.ContentAPI.Timeout != 7*time.Second {
		t.Errorf("content_api.timeout = %v, want 7s", cfg.ContentAPI.Timeout)
	}
	if cfg.Session.Backend != "cookie" {
		t.Errorf("session.backend = %q, want cookie", cfg.Session.Backend)
	}
	if cfg.Session.TTL != 720*time.Hour {
		t.Errorf("session.ttl = %v, want 720h", cfg.Session.TTL)
	}
	if cfg.Sync.PollInterval != 15*time.Second {
		t.Errorf("sync.poll_interval = %v, want 15s", cfg.Sync.PollInterval)
	}
	if got := cfg.CORS.Origins(); len(got) != 2 || got[0] != "https://blog.example.com" {
		t.Errorf("cors.Origins() = %v", got)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	validEnv(t)
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("SESSION_BACKEND", "cookie")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want warn (ENV override)", cfg.Log.Level)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Session.Backend != "cookie" {
		t.Errorf("session.backend = %q, want cookie (default)", cfg.Session.Backend)
	}
	if cfg.ContentAPI.Endpoint != "" {
		t.Errorf("content_api.endpoint should default empty, got %q", cfg.ContentAPI.Endpoint)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for explicit missing config path")
	}
}

func TestValidate_Errors(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Session.Backend = "cookie"
		cfg.Session.CookieSecret = testSecret
		cfg.Session.TTL = time.Hour
		cfg.Sync.PollInterval = time.Second
		cfg.ContentAPI.Timeout = time.Second
		cfg.ContentAPI.VerifyTimeout = time.Second
		cfg.Log.Format = "json"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "short cookie secret",
			mutate:  func(c *Config) { c.Session.CookieSecret = "too-short" },
			wantSub: "cookie_secret",
		},
		{
			name:    "postgres backend without dsn",
			mutate:  func(c *Config) { c.Session.Backend = "postgres" },
			wantSub: "database.dsn",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Session.Backend = "redis" },
			wantSub: "session.backend",
		},
		{
			name:    "non-positive ttl",
			mutate:  func(c *Config) { c.Session.TTL = 0 },
			wantSub: "session.ttl",
		},
		{
			name:    "non-positive poll interval",
			mutate:  func(c *Config) { c.Sync.PollInterval = -time.Second },
			wantSub: "poll_interval",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantSub: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_PostgresWithDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Session.Backend = "postgres"
	cfg.Session.CookieSecret = testSecret
	cfg.Session.TTL = time.Hour
	cfg.Sync.PollInterval = time.Second
	cfg.ContentAPI.Timeout = time.Second
	cfg.ContentAPI.VerifyTimeout = time.Second
	cfg.Database.DSN = "postgres://u:p@localhost:5432/sessions"
	cfg.Log.Format = "json"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
