package rest

import (
	"log/slog"
	"net/http"

	"github.com/najubudeen/vanturalog/internal/session"
	"github.com/najubudeen/vanturalog/internal/transport/middleware"
)

// NewRouter assembles the HTTP route table with the standard middleware
// stack: request id, logging, panic recovery and CORS on everything, the
// session manager on the API routes, identity resolution only where a
// request renders on behalf of a user.
func NewRouter(
	log *slog.Logger,
	factory session.Factory,
	buildManager middleware.ManagerBuilder,
	auth *AuthHandler,
	graphql *GraphQLHandler,
	content *ContentHandler,
	health *HealthHandler,
	allowedOrigins []string,
	limiter *middleware.RateLimiter,
	loginPerMinute int,
) http.Handler {
	mux := http.NewServeMux()

	base := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(log),
		middleware.CORS(allowedOrigins),
		middleware.Logger(log),
	)
	withSession := middleware.Chain(middleware.Session(factory, buildManager))
	withIdentity := middleware.Chain(
		middleware.Session(factory, buildManager),
		middleware.Resolve(log),
	)

	mux.Handle("GET /livez", http.HandlerFunc(health.Live))
	mux.Handle("GET /readyz", http.HandlerFunc(health.Ready))

	// The auth exchange and the proxy read the session but must not
	// trigger a verification round-trip of their own.
	mux.Handle("POST /api/auth", limiter.Limit(loginPerMinute)(withSession(auth)))
	mux.Handle("POST /api/graphql", withSession(graphql))

	mux.Handle("GET /api/me", withIdentity(MeHandler{}))
	mux.Handle("GET /api/posts", withSession(http.HandlerFunc(content.Posts)))
	mux.Handle("GET /api/posts/{slug}", withSession(http.HandlerFunc(content.Post)))
	mux.Handle("POST /api/comments", withIdentity(http.HandlerFunc(content.SubmitComment)))
	mux.Handle("GET /api/authors", withSession(http.HandlerFunc(content.Authors)))
	mux.Handle("GET /api/settings/logo", withSession(http.HandlerFunc(content.LogoSettings)))
	mux.Handle("POST /api/settings/logo", withIdentity(http.HandlerFunc(content.UpdateLogoSettings)))
	mux.Handle("POST /api/profile", withIdentity(http.HandlerFunc(content.UpdateProfile)))

	return base(mux)
}
