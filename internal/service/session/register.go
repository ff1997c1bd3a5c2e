package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	"github.com/najubudeen/vanturalog/internal/domain"
)

var opRegister = contentapi.MustOperation(`
mutation RegisterUser($username: String!, $email: String!, $password: String!) {
  registerUser(input: {username: $username, email: $email, password: $password}) {
    user {
      databaseId
      username
      email
    }
  }
}`)

type registerPayload struct {
	RegisterUser struct {
		User *struct {
			DatabaseID int64  `json:"databaseId"`
			Username   string `json:"username"`
			Email      string `json:"email"`
		} `json:"user"`
	} `json:"registerUser"`
}

// Register creates a content API account. It does not log the new account
// in; the caller follows up with Login so both paths share one token flow.
//
// Upstream refusals (duplicate username, weak password by the API's rules)
// surface as validation errors carrying the API's own wording.
func (m *Manager) Register(ctx context.Context, input RegisterInput) error {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := input.Validate(); err != nil {
		return err
	}

	resp, err := m.api.Do(ctx, opRegister, map[string]any{
		"username": input.Username,
		"email":    input.Email,
		"password": input.Password,
	}, "")
	if err != nil {
		return fmt.Errorf("session.Register: %w", err)
	}

	if len(resp.Errors) > 0 {
		msgs := resp.ErrMessages()
		if m.classify.Classify(msgs) == auth.ClassTransient {
			return fmt.Errorf("session.Register: %s: %w", strings.Join(msgs, ", "), domain.ErrTransient)
		}
		return domain.NewValidationError("registration", strings.Join(msgs, ", "))
	}

	var payload registerPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return fmt.Errorf("session.Register: decode: %w", domain.ErrTransient)
	}
	if payload.RegisterUser.User == nil {
		return domain.NewValidationError("registration", "account was not created")
	}

	m.log.InfoContext(ctx, "account registered",
		slog.String("username", payload.RegisterUser.User.Username))
	return nil
}
