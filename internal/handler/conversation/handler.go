package conversation

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joshfermano/perpsbot/server/internal/auth"
	"github.com/joshfermano/perpsbot/server/internal/middleware"
	chatservice "github.com/joshfermano/perpsbot/server/internal/service/chat"
	"github.com/joshfermano/perpsbot/server/pkg/utils"
)

// Handler serves conversation management for signed-in users.
type Handler struct {
	chatSvc *chatservice.Service
	tokens  *auth.Tokens
}

// New creates the conversation handler.
func New(chatSvc *chatservice.Service, tokens *auth.Tokens) *Handler {
	return &Handler{chatSvc: chatSvc, tokens: tokens}
}

// RegisterRoutes mounts the conversation endpoints behind the mandatory gate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conversations", func(cr chi.Router) {
		cr.Use(middleware.Require(h.tokens))
		cr.Get("/", h.handleList)
		cr.Post("/", h.handleCreate)
		cr.Get("/{id}/messages", h.handleMessages)
		cr.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	summaries, err := h.chatSvc.ListConversations(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("[conversation] failed to list conversations: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}
	utils.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var payload struct {
		Title string `json:"title"`
	}
	// An empty body is fine; the default title applies.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.chatSvc.CreateConversation(r.Context(), identity.UserID, payload.Title)
	if err != nil {
		log.Printf("[conversation] failed to create conversation: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, conv.Summarize())
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())
	id := chi.URLParam(r, "id")

	messages, err := h.chatSvc.Messages(r.Context(), identity.UserID, id)
	if errors.Is(err, chatservice.ErrConversationNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		log.Printf("[conversation] failed to fetch messages: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch conversation messages")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())
	id := chi.URLParam(r, "id")

	err := h.chatSvc.DeleteConversation(r.Context(), identity.UserID, id)
	if errors.Is(err, chatservice.ErrConversationNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		log.Printf("[conversation] failed to delete conversation: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}
