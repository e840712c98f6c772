package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joshfermano/perpsbot/server/internal/auth"
	"github.com/joshfermano/perpsbot/server/internal/middleware"
	chatmodel "github.com/joshfermano/perpsbot/server/internal/model/chat"
	chatservice "github.com/joshfermano/perpsbot/server/internal/service/chat"
	"github.com/joshfermano/perpsbot/server/pkg/utils"
)

// Handler serves the message endpoint. It sits behind the optional gate so a
// single route handles both guests and members.
type Handler struct {
	chatSvc *chatservice.Service
	tokens  *auth.Tokens
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, tokens *auth.Tokens) *Handler {
	return &Handler{chatSvc: chatSvc, tokens: tokens}
}

// RegisterRoutes mounts the message endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.Optional(h.tokens)).Post("/chats/message", h.handleSendMessage)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversationId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	identity, authenticated := middleware.IdentityFrom(r.Context())

	// Guest exchanges skip persistence entirely. A caller may also mark the
	// exchange guest-scoped explicitly, even when signed in.
	guestScoped := payload.ConversationID == chatmodel.GuestConversationID ||
		(!authenticated && payload.ConversationID == "")
	if guestScoped {
		reply, err := h.chatSvc.SendGuest(r.Context(), payload.Message)
		if err != nil {
			log.Printf("[chat] guest generation failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to generate response")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"response":       reply.Response,
			"conversationId": reply.ConversationID,
		})
		return
	}

	// Targeting a real conversation requires a session.
	if !authenticated {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reply, err := h.chatSvc.Send(r.Context(), identity.UserID, payload.ConversationID, payload.Message)
	switch {
	case errors.Is(err, chatservice.ErrConversationNotFound):
		utils.RespondError(w, http.StatusNotFound, "Conversation not found")
		return
	case errors.Is(err, chatservice.ErrGenerationFailed):
		log.Printf("[chat] generation failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to generate response")
		return
	case err != nil:
		log.Printf("[chat] failed to process message: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"response":       reply.Response,
		"title":          reply.Title,
		"conversationId": reply.ConversationID,
	})
}
