package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/najubudeen/vanturalog/internal/domain"
)

// Logout destroys the persisted session unconditionally. It never calls
// the content API: a logout must succeed while the upstream is down.
func (m *Manager) Logout(ctx context.Context) error {
	name := ""
	if id, ok := m.CurrentIdentity(); ok {
		name = id.DisplayName
	}

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	m.setState(StateUnauthenticated, domain.Identity{})

	m.log.InfoContext(ctx, "user logged out", slog.String("user", name))
	return nil
}
