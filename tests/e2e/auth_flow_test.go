//go:build e2e

package e2e

import (
	"net/http"
	"strings"
	"testing"
)

func TestAuthFlow_LoginMeLogout(t *testing.T) {
	env := newEnv(t)

	resp, body := env.login(t, "naju", goodPassword)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["success"] != true {
		t.Fatalf("login: expected success, got %v", body)
	}

	// The session rides on cookies; the raw token must not be readable.
	var sawToken, sawName bool
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "auth_token":
			sawToken = true
			if c.Value == "" || strings.HasPrefix(c.Value, "e2e-") {
				t.Error("auth_token cookie must be sealed, not the raw token")
			}
			if !c.HttpOnly {
				t.Error("auth_token cookie must be HttpOnly")
			}
		case "user_name":
			sawName = true
		}
	}
	if !sawToken || !sawName {
		t.Fatalf("expected auth_token and user_name cookies, got %v", resp.Cookies())
	}

	resp, body = env.get(t, "/api/me")
	if resp.StatusCode != http.StatusOK || body["authenticated"] != true {
		t.Fatalf("me after login: expected authenticated, got %d %v", resp.StatusCode, body)
	}
	if body["state"] != "verified" {
		t.Errorf("me: expected verified state, got %v", body["state"])
	}

	resp, _ = env.post(t, "/api/auth", map[string]string{"action": "logout"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	_, body = env.get(t, "/api/me")
	if body["authenticated"] != false {
		t.Fatalf("me after logout: expected unauthenticated, got %v", body)
	}
}

func TestAuthFlow_BadCredentials(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.login(t, "naju", "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refused credentials, got %d", resp.StatusCode)
	}

	_, body := env.get(t, "/api/me")
	if body["authenticated"] != false {
		t.Fatalf("failed login must not create a session, got %v", body)
	}
}
