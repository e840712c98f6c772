package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authtoken "github.com/joshfermano/perpsbot/server/internal/auth"
	"github.com/joshfermano/perpsbot/server/internal/middleware"
	"github.com/joshfermano/perpsbot/server/internal/model/user"
	"github.com/joshfermano/perpsbot/server/internal/service/account"
	"github.com/joshfermano/perpsbot/server/pkg/utils"
)

// Handler serves registration, login, logout and session verification.
type Handler struct {
	accounts   *account.Service
	tokens     *authtoken.Tokens
	production bool
}

// New creates the auth handler. production switches cookie attributes for
// cross-site deployments.
func New(accounts *account.Service, tokens *authtoken.Tokens, production bool) *Handler {
	return &Handler{accounts: accounts, tokens: tokens, production: production}
}

// RegisterRoutes mounts the auth endpoints. Verify sits behind the mandatory
// gate; the rest are public.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.With(middleware.Require(h.tokens)).Get("/auth/verify", h.handleVerify)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	u, err := h.accounts.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if errors.Is(err, account.ErrUserExists) {
		utils.RespondError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		log.Printf("[auth] registration failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	if !h.issueSession(w, u) {
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u.Public(),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.accounts.Login(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		utils.RespondError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		log.Printf("[auth] login failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to login")
		return
	}

	if !h.issueSession(w, u) {
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    u.Public(),
	})
}

// handleLogout clears the session cookie. It succeeds whether or not a
// session existed.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// handleVerify echoes the identity attached by the mandatory gate, used by
// clients to restore UI state on page load.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"username": id.Username,
		"email":    id.Email,
		"valid":    true,
	})
}

// issueSession signs a token for the user and sets the session cookie. It
// writes an error response and returns false on failure.
func (h *Handler) issueSession(w http.ResponseWriter, u user.User) bool {
	token, err := h.tokens.Issue(authtoken.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		log.Printf("[auth] failed to issue token: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create session")
		return false
	}

	cookie := h.sessionCookie(token)
	cookie.MaxAge = int(h.tokens.TTL().Seconds())
	http.SetCookie(w, cookie)
	return true
}

func (h *Handler) sessionCookie(value string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.production {
		// Cross-site cookies need SameSite=None, which browsers only accept
		// over HTTPS.
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	}
}
