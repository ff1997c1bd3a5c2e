package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	ContentAPI ContentAPIConfig `yaml:"content_api"`
	Session    SessionConfig    `yaml:"session"`
	Database   DatabaseConfig   `yaml:"database"`
	Sync       SyncConfig       `yaml:"sync"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	LoginPerMinute  int           `yaml:"login_per_minute" env:"SERVER_LOGIN_PER_MINUTE" env-default:"10"`
}

// ContentAPIConfig points at the upstream GraphQL endpoint. An empty
// endpoint is tolerated at load time and surfaces as a configuration
// error on first use, so the service can boot and report the problem.
type ContentAPIConfig struct {
	Endpoint      string        `yaml:"endpoint"       env:"CONTENT_API_ENDPOINT"`
	Timeout       time.Duration `yaml:"timeout"        env:"CONTENT_API_TIMEOUT"        env-default:"10s"`
	VerifyTimeout time.Duration `yaml:"verify_timeout" env:"CONTENT_API_VERIFY_TIMEOUT" env-default:"10s"`
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	// Backend selects where sessions live: "cookie" (everything in the
	// browser, token sealed) or "postgres" (server-side rows keyed by an
	// id cookie).
	Backend      string        `yaml:"backend"       env:"SESSION_BACKEND"       env-default:"cookie"`
	CookieSecret string        `yaml:"cookie_secret" env:"SESSION_COOKIE_SECRET" env-required:"true"`
	TTL          time.Duration `yaml:"ttl"           env:"SESSION_TTL"           env-default:"8760h"`
	Secure       bool          `yaml:"secure"        env:"SESSION_SECURE"        env-default:"true"`
}

// DatabaseConfig holds PostgreSQL connection settings, used only when the
// session backend is "postgres".
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SyncConfig tunes the content freshness machinery.
type SyncConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"  env:"SYNC_POLL_INTERVAL"  env-default:"30s"`
	OptimisticTTL time.Duration `yaml:"optimistic_ttl" env:"SYNC_OPTIMISTIC_TTL" env-default:"10m"`
}

// CORSConfig holds CORS settings for the browser-facing routes.
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// Origins returns the allowed origins as a list.
func (c CORSConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
