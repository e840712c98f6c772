package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joshfermano/perpsbot/server/internal/auth"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	identity := auth.Identity{UserID: "user-1", Username: "alice", Email: "a@x.com"}

	raw, err := tokens.Issue(identity)
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	got, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if got != identity {
		t.Fatalf("identity mismatch: got %+v want %+v", got, identity)
	}
}

func TestVerifyExpired(t *testing.T) {
	tokens := auth.NewTokens("test-secret", -time.Minute)

	raw, err := tokens.Issue(auth.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	if _, err := tokens.Verify(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	raw, err := tokens.Issue(auth.Identity{UserID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(raw, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := tokens.Verify(tampered); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := auth.NewTokens("secret-a", time.Hour)
	verifier := auth.NewTokens("secret-b", time.Hour)

	raw, err := issuer.Issue(auth.Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue err: %v", err)
	}

	if _, err := verifier.Verify(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := tokens.Verify(raw); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}
