package config

import (
	"fmt"

	"github.com/najubudeen/vanturalog/internal/session"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Session.CookieSecret) != session.SecretLength {
		return fmt.Errorf("session.cookie_secret must be exactly %d bytes (got %d)",
			session.SecretLength, len(c.Session.CookieSecret))
	}

	switch c.Session.Backend {
	case "cookie":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres session backend")
		}
	default:
		return fmt.Errorf("session.backend must be cookie or postgres (got %q)", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive (got %v)", c.Session.TTL)
	}
	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("sync.poll_interval must be positive (got %v)", c.Sync.PollInterval)
	}
	if c.ContentAPI.Timeout <= 0 || c.ContentAPI.VerifyTimeout <= 0 {
		return fmt.Errorf("content_api timeouts must be positive")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}
