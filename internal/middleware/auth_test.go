package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshfermano/perpsbot/server/internal/auth"
	"github.com/joshfermano/perpsbot/server/internal/middleware"
)

func identityEcho(t *testing.T, wantPresent bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFrom(r.Context())
		if ok != wantPresent {
			t.Errorf("identity presence: got %v want %v", ok, wantPresent)
		}
		if ok && id.UserID == "" {
			t.Error("identity attached without user id")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func request(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	}
	return req
}

func TestRequireRejectsBadCredentials(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	expired := auth.NewTokens("test-secret", -time.Minute)

	expiredToken, err := expired.Issue(auth.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing cookie", token: ""},
		{name: "tampered token", token: "not.a.token"},
		{name: "expired token", token: expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejected := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Error("handler reached despite invalid credentials")
			})
			resp := httptest.NewRecorder()

			middleware.Require(tokens)(rejected).ServeHTTP(resp, request(tt.token))

			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}
		})
	}
}

func TestRequireAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	token, err := tokens.Issue(auth.Identity{UserID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	resp := httptest.NewRecorder()
	middleware.Require(tokens)(identityEcho(t, true)).ServeHTTP(resp, request(token))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestOptionalProceedsAnonymously(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	for _, token := range []string{"", "not.a.token"} {
		resp := httptest.NewRecorder()
		middleware.Optional(tokens)(identityEcho(t, false)).ServeHTTP(resp, request(token))

		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for anonymous request, got %d", resp.Code)
		}
	}
}

func TestOptionalAttachesValidIdentity(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	token, err := tokens.Issue(auth.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	resp := httptest.NewRecorder()
	middleware.Optional(tokens)(identityEcho(t, true)).ServeHTTP(resp, request(token))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
