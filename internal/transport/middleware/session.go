package middleware

import (
	"context"
	"log/slog"
	"net/http"

	sessionsvc "github.com/najubudeen/vanturalog/internal/service/session"
	"github.com/najubudeen/vanturalog/internal/session"
	"github.com/najubudeen/vanturalog/pkg/ctxutil"
)

// ManagerBuilder turns a request-scoped store into a session manager.
// Wired from the composition root so the middleware package stays free of
// service construction details.
type ManagerBuilder func(store session.Store) *sessionsvc.Manager

type managerCtxKey struct{}

// Session attaches a request-scoped session manager to the context. It
// performs no upstream call on its own; handlers that need a settled
// identity go through Resolve.
func Session(factory session.Factory, build ManagerBuilder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mgr := build(factory.Store(w, r))
			ctx := context.WithValue(r.Context(), managerCtxKey{}, mgr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ManagerFromCtx returns the request's session manager. Panics when the
// Session middleware is not installed, which is a wiring bug.
func ManagerFromCtx(ctx context.Context) *sessionsvc.Manager {
	mgr, ok := ctx.Value(managerCtxKey{}).(*sessionsvc.Manager)
	if !ok || mgr == nil {
		panic("middleware: session manager not in context")
	}
	return mgr
}

// Resolve settles the session for routes that render on behalf of a user:
// it runs the verify cycle and places the redacted identity in the
// context. A transient upstream failure does not fail the request; the
// cached identity rides through in a degraded state. Requests without a
// session pass through anonymous.
func Resolve(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mgr := ManagerFromCtx(r.Context())

			if _, err := mgr.Resolve(r.Context()); err != nil {
				logger.ErrorContext(r.Context(), "session resolve failed",
					slog.String("error", err.Error()))
			}

			ctx := r.Context()
			if id, ok := mgr.CurrentIdentity(); ok {
				ctx = ctxutil.WithIdentity(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
