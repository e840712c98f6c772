package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authtoken "github.com/joshfermano/perpsbot/server/internal/auth"
	authHandler "github.com/joshfermano/perpsbot/server/internal/handler/auth"
	chatHandler "github.com/joshfermano/perpsbot/server/internal/handler/chat"
	conversationHandler "github.com/joshfermano/perpsbot/server/internal/handler/conversation"
	middlewarePkg "github.com/joshfermano/perpsbot/server/internal/middleware"
	"github.com/joshfermano/perpsbot/server/internal/service/account"
	chatService "github.com/joshfermano/perpsbot/server/internal/service/chat"
	"github.com/joshfermano/perpsbot/server/pkg/utils"
)

// RouterConfig carries everything the HTTP layer needs.
type RouterConfig struct {
	Accounts       *account.Service
	Chat           *chatService.Service
	Tokens         *authtoken.Tokens
	AllowedOrigins []string
	Environment    string
	Production     bool
}

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":      "OK",
			"environment": cfg.Environment,
		})
	})

	r.Route("/api", func(api chi.Router) {
		authHandler.New(cfg.Accounts, cfg.Tokens, cfg.Production).RegisterRoutes(api)
		chatHandler.New(cfg.Chat, cfg.Tokens).RegisterRoutes(api)
		conversationHandler.New(cfg.Chat, cfg.Tokens).RegisterRoutes(api)
	})

	return r
}
