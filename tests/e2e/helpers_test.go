//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/najubudeen/vanturalog/internal/auth"
	"github.com/najubudeen/vanturalog/internal/contentapi"
	contentsvc "github.com/najubudeen/vanturalog/internal/service/content"
	sessionsvc "github.com/najubudeen/vanturalog/internal/service/session"
	"github.com/najubudeen/vanturalog/internal/session"
	"github.com/najubudeen/vanturalog/internal/transport/middleware"
	"github.com/najubudeen/vanturalog/internal/transport/rest"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	goodPassword = "correct-horse-battery"
)

// cmsComment is one comment row in the fake CMS.
type cmsComment struct {
	ID       int64
	Parent   int64
	Author   string
	Content  string
	Status   string
	Date     string
}

// fakeCMS is an in-memory WPGraphQL stand-in. It dispatches on the
// operation name inside the query text and can be flipped into outage
// mode to simulate the content API being down.
type fakeCMS struct {
	mu       sync.Mutex
	down     bool
	tokens   map[string]string // token -> username
	comments []cmsComment
	nextID   int64
}

func newFakeCMS() *fakeCMS {
	return &fakeCMS{tokens: map[string]string{}, nextID: 100}
}

func (c *fakeCMS) setDown(down bool) {
	c.mu.Lock()
	c.down = down
	c.mu.Unlock()
}

func (c *fakeCMS) revokeAll() {
	c.mu.Lock()
	c.tokens = map[string]string{}
	c.mu.Unlock()
}

func (c *fakeCMS) approveAll() {
	c.mu.Lock()
	for i := range c.comments {
		c.comments[i].Status = "APPROVE"
	}
	c.mu.Unlock()
}

func (c *fakeCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.down {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
		return
	}

	body, _ := io.ReadAll(r.Body)
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user := c.tokens[token]

	switch {
	case strings.Contains(req.Query, "LoginUser"):
		c.handleLogin(w, req.Variables)
	case strings.Contains(req.Query, "GetViewer"):
		c.handleViewer(w, user)
	case strings.Contains(req.Query, "GetSinglePost"):
		c.handlePost(w)
	case strings.Contains(req.Query, "CreateComment"):
		c.handleCreateComment(w, req.Variables, user)
	default:
		writeGQL(w, map[string]any{}, nil)
	}
}

func (c *fakeCMS) handleLogin(w http.ResponseWriter, vars map[string]any) {
	username, _ := vars["username"].(string)
	password, _ := vars["password"].(string)
	if password != goodPassword {
		writeGQL(w, nil, []string{"incorrect_password"})
		return
	}
	token := fmt.Sprintf("e2e-token-%d", len(c.tokens)+1)
	c.tokens[token] = username
	writeGQL(w, map[string]any{
		"login": map[string]any{
			"authToken": token,
			"user": map[string]any{
				"databaseId": 7,
				"name":       username,
				"email":      username + "@example.com",
				"roles":      map[string]any{"nodes": []map[string]any{{"name": "administrator"}}},
			},
		},
	}, nil)
}

func (c *fakeCMS) handleViewer(w http.ResponseWriter, user string) {
	if user == "" {
		writeGQL(w, map[string]any{"viewer": nil}, nil)
		return
	}
	writeGQL(w, map[string]any{
		"viewer": map[string]any{
			"databaseId": 7,
			"name":       user,
			"email":      user + "@example.com",
			"avatarUrl":  "",
			"roles":      map[string]any{"nodes": []map[string]any{{"name": "administrator"}}},
		},
	}, nil)
}

func (c *fakeCMS) handlePost(w http.ResponseWriter) {
	nodes := make([]map[string]any, 0, len(c.comments))
	for _, cm := range c.comments {
		nodes = append(nodes, map[string]any{
			"databaseId":       cm.ID,
			"content":          cm.Content,
			"date":             cm.Date,
			"status":           cm.Status,
			"parentDatabaseId": cm.Parent,
			"author":           map[string]any{"node": map[string]any{"name": cm.Author}},
		})
	}
	writeGQL(w, map[string]any{
		"postBy": map[string]any{
			"databaseId": 42,
			"title":      "Hello World",
			"content":    "<p>first post</p>",
			"comments":   map[string]any{"nodes": nodes},
		},
	}, nil)
}

func (c *fakeCMS) handleCreateComment(w http.ResponseWriter, vars map[string]any, user string) {
	if user == "" {
		writeGQL(w, nil, []string{"You must be logged in to comment"})
		return
	}
	c.nextID++
	content, _ := vars["content"].(string)
	author, _ := vars["author"].(string)
	c.comments = append(c.comments, cmsComment{
		ID:      c.nextID,
		Author:  author,
		Content: "<p>" + content + "</p>",
		Status:  "HOLD",
		Date:    time.Now().Format("2006-01-02T15:04:05"),
	})
	writeGQL(w, map[string]any{
		"createComment": map[string]any{
			"success": true,
			"comment": map[string]any{"databaseId": c.nextID, "status": "HOLD"},
		},
	}, nil)
}

func writeGQL(w http.ResponseWriter, data map[string]any, errMsgs []string) {
	out := map[string]any{}
	if data != nil {
		out["data"] = data
	}
	if len(errMsgs) > 0 {
		var list []map[string]string
		for _, m := range errMsgs {
			list = append(list, map[string]string{"message": m})
		}
		out["errors"] = list
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out) //nolint:errcheck
}

// env is one running stack: fake CMS, real router, cookie-aware client.
type env struct {
	cms    *fakeCMS
	server *httptest.Server
	client *http.Client
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cms := newFakeCMS()
	upstream := httptest.NewServer(cms)
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.DiscardHandler)
	api := contentapi.New(upstream.URL, 5*time.Second, logger)
	classifier := auth.NewClassifier()

	codec, err := session.NewCodec(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	factory := session.CookieFactory{Codec: codec, TTL: time.Hour, Secure: false}

	buildManager := func(store session.Store) *sessionsvc.Manager {
		return sessionsvc.NewManager(logger, api, classifier, store)
	}
	buildSync := func(tokens interface{ Token() string }) *contentsvc.SyncClient {
		return contentsvc.NewSyncClient(logger, api, classifier, tokens)
	}

	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	router := rest.NewRouter(
		logger,
		factory,
		buildManager,
		rest.NewAuthHandler(logger),
		rest.NewGraphQLHandler(api, logger),
		rest.NewContentHandler(buildSync, logger),
		rest.NewHealthHandler("e2e", nil),
		[]string{"*"},
		limiter,
		100,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	return &env{
		cms:    cms,
		server: server,
		client: &http.Client{Jar: jar},
	}
}

func (e *env) post(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := e.client.Post(e.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return resp, decode(t, resp)
}

func (e *env) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	return resp, decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, raw)
		}
	}
	return m
}

func (e *env) login(t *testing.T, username, password string) (*http.Response, map[string]any) {
	t.Helper()
	return e.post(t, "/api/auth", map[string]string{
		"action": "login", "username": username, "password": password,
	})
}
