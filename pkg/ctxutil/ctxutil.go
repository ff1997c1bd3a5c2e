package ctxutil

import (
	"context"

	"github.com/najubudeen/vanturalog/internal/domain"
)

type ctxKey string

const (
	identityKey  ctxKey = "identity"
	requestIDKey ctxKey = "request_id"
)

// WithIdentity stores the (already redacted) identity in the context.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx extracts the identity from the context.
// Returns the zero Identity and false if none was stored.
func IdentityFromCtx(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	if !ok || id.DisplayName == "" {
		return domain.Identity{}, false
	}
	return id, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
