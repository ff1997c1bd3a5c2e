//go:build e2e

package e2e

import (
	"net/http"
	"testing"
)

func TestCommentFlow_SubmitPendingThenApproved(t *testing.T) {
	env := newEnv(t)

	if resp, _ := env.login(t, "naju", goodPassword); resp.StatusCode != 200 {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	resp, body := env.post(t, "/api/comments", map[string]any{
		"postId": 42, "slug": "hello-world", "content": "great write-up",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit: expected 202, got %d (%v)", resp.StatusCode, body)
	}
	if body["pending"] == nil {
		t.Fatal("submit should hand back the optimistic record")
	}

	// Held for moderation: the approved feed does not show it yet. The
	// optimistic overlay across page loads is the browser's job, seeded
	// by the pending record returned above.
	_, body = env.get(t, "/api/posts/hello-world")
	if comments := body["comments"].([]any); len(comments) != 0 {
		t.Fatalf("held comment must not be in the approved feed, got %v", comments)
	}

	// Moderation approves it: the real comment replaces the pending one.
	env.cms.approveAll()

	_, body = env.get(t, "/api/posts/hello-world")
	comments := body["comments"].([]any)
	if len(comments) != 1 {
		t.Fatalf("expected the approved comment, got %v", body)
	}
	got := comments[0].(map[string]any)
	if got["author"] != "naju" {
		t.Errorf("expected the submitter as author, got %v", got["author"])
	}
}

func TestCommentFlow_AnonymousCannotComment(t *testing.T) {
	env := newEnv(t)

	resp, _ := env.post(t, "/api/comments", map[string]any{
		"postId": 42, "slug": "hello-world", "content": "drive-by",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.StatusCode)
	}
}
