package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	sessionsvc "github.com/najubudeen/vanturalog/internal/service/session"
	"github.com/najubudeen/vanturalog/internal/session"
	"github.com/najubudeen/vanturalog/pkg/ctxutil"
)

// memFactory hands every request the same in-memory store.
type memFactory struct {
	store *session.MemoryStore
}

func (f memFactory) Store(http.ResponseWriter, *http.Request) session.Store {
	return f.store
}

type contentAPIStub struct {
	calls int
	do    func(ctx context.Context, op *contentapi.Operation, vars map[string]any, token string) (*contentapi.Response, error)
}

func (s *contentAPIStub) Do(ctx context.Context, op *contentapi.Operation, vars map[string]any, token string) (*contentapi.Response, error) {
	s.calls++
	return s.do(ctx, op, vars, token)
}

func builderFor(api *contentAPIStub) ManagerBuilder {
	logger := slog.New(slog.DiscardHandler)
	return func(store session.Store) *sessionsvc.Manager {
		return sessionsvc.NewManager(logger, api, auth.NewClassifier(), store)
	}
}

func seededFactory(t *testing.T) memFactory {
	t.Helper()
	store := session.NewMemoryStore()
	err := store.Set(context.Background(), &session.Data{
		Token:       "cached-token",
		DisplayName: "naju",
		Role:        "administrator",
	})
	if err != nil {
		t.Fatal(err)
	}
	return memFactory{store: store}
}

func TestSession_AttachesManagerWithoutUpstreamCall(t *testing.T) {
	api := &contentAPIStub{do: func(context.Context, *contentapi.Operation, map[string]any, string) (*contentapi.Response, error) {
		return nil, errors.New("must not be called")
	}}

	var mgr *sessionsvc.Manager
	handler := Session(seededFactory(t), builderFor(api))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mgr = ManagerFromCtx(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if mgr == nil {
		t.Fatal("expected a manager in the request context")
	}
	if api.calls != 0 {
		t.Errorf("Session must not verify on its own, got %d upstream calls", api.calls)
	}
}

func TestManagerFromCtx_PanicsWhenMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic without the Session middleware")
		}
	}()
	ManagerFromCtx(context.Background())
}

func TestResolve_VerifiedIdentityInContext(t *testing.T) {
	api := &contentAPIStub{do: func(context.Context, *contentapi.Operation, map[string]any, string) (*contentapi.Response, error) {
		return &contentapi.Response{Data: []byte(`{"viewer":{"databaseId":7,"name":"naju","roles":{"nodes":[{"name":"administrator"}]}}}`)}, nil
	}}

	var gotName string
	var hadIdentity bool
	chain := Chain(
		Session(seededFactory(t), builderFor(api)),
		Resolve(slog.New(slog.DiscardHandler)),
	)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := ctxutil.IdentityFromCtx(r.Context())
		hadIdentity = ok
		gotName = id.DisplayName
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !hadIdentity {
		t.Fatal("expected identity in context after resolve")
	}
	if gotName != "naju" {
		t.Errorf("expected verified identity, got %q", gotName)
	}
}

func TestResolve_UpstreamDownKeepsCachedIdentity(t *testing.T) {
	api := &contentAPIStub{do: func(context.Context, *contentapi.Operation, map[string]any, string) (*contentapi.Response, error) {
		return nil, errors.New("connection refused")
	}}

	var hadIdentity bool
	var gotName string
	chain := Chain(
		Session(seededFactory(t), builderFor(api)),
		Resolve(slog.New(slog.DiscardHandler)),
	)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := ctxutil.IdentityFromCtx(r.Context())
		hadIdentity = ok
		gotName = id.DisplayName
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !hadIdentity {
		t.Fatal("an upstream outage must not log the user out")
	}
	if gotName != "naju" {
		t.Errorf("expected cached identity, got %q", gotName)
	}
}

func TestResolve_AnonymousPassesThrough(t *testing.T) {
	api := &contentAPIStub{do: func(context.Context, *contentapi.Operation, map[string]any, string) (*contentapi.Response, error) {
		return nil, errors.New("must not be called")
	}}

	var hadIdentity bool
	chain := Chain(
		Session(memFactory{store: session.NewMemoryStore()}, builderFor(api)),
		Resolve(slog.New(slog.DiscardHandler)),
	)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadIdentity = ctxutil.IdentityFromCtx(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if hadIdentity {
		t.Error("expected no identity for an anonymous request")
	}
	if api.calls != 0 {
		t.Errorf("no session means no upstream call, got %d", api.calls)
	}
}
