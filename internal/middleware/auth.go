package middleware

import (
	"context"
	"net/http"

	"github.com/joshfermano/perpsbot/server/internal/auth"
	"github.com/joshfermano/perpsbot/server/pkg/utils"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

type contextKey struct{}

var identityKey contextKey

// IdentityFrom extracts the authenticated caller from the request context.
// The second return is false for anonymous requests.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// Require rejects requests without a valid session token. A missing, tampered
// and expired cookie all produce the same 401.
func Require(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := verify(tokens, r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "authentication failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

// Optional runs the same verification as Require but proceeds anonymously on
// any failure, so one endpoint can serve guests and members alike.
func Optional(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := verify(tokens, r); ok {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verify(tokens *auth.Tokens, r *http.Request) (auth.Identity, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return auth.Identity{}, false
	}

	id, err := tokens.Verify(cookie.Value)
	if err != nil {
		return auth.Identity{}, false
	}
	return id, true
}
