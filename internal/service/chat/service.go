package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joshfermano/perpsbot/server/internal/model/chat"
	"github.com/joshfermano/perpsbot/server/internal/store"
)

// titleLimit is the character cap applied when deriving a conversation title
// from its first message.
const titleLimit = 50

var (
	// ErrConversationNotFound mirrors the store's collapsed missing/not-owned
	// failure mode.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrGenerationFailed wraps any failure of the generation backend,
	// including an empty completion.
	ErrGenerationFailed = errors.New("failed to generate response")
)

// Generator is the external text-generation collaborator. Every call is
// single-turn: prior conversation turns are never forwarded.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reply is the outcome of a processed message.
type Reply struct {
	Response       string
	ConversationID string
	Title          string
}

// Service orchestrates the message pipeline: resolve the target conversation,
// append the user turn, invoke the generator, append the reply, and persist
// the record in one save.
type Service struct {
	conversations store.ConversationStore
	generator     Generator
}

// NewService wires the pipeline to its conversation store and generator.
func NewService(conversations store.ConversationStore, generator Generator) *Service {
	return &Service{conversations: conversations, generator: generator}
}

// SendGuest handles an exchange with no server-side persistence. The caller
// is responsible for mirroring the turn locally.
func (s *Service) SendGuest(ctx context.Context, message string) (Reply, error) {
	text, err := s.generate(ctx, message)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Response: text, ConversationID: chat.GuestConversationID}, nil
}

// Send handles an exchange for an identified caller against a conversation
// they own.
//
// When generation fails the user turn has already been appended to the
// in-memory record but the single save is skipped, so nothing is persisted
// for the failed exchange.
func (s *Service) Send(ctx context.Context, ownerID, conversationID, message string) (Reply, error) {
	conv, err := s.conversations.Get(ctx, ownerID, conversationID)
	if errors.Is(err, store.ErrConversationNotFound) {
		return Reply{}, ErrConversationNotFound
	}
	if err != nil {
		return Reply{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	// The title is derived exactly once, from the first message.
	if len(conv.Messages) == 0 {
		conv.Title = DeriveTitle(message)
	}

	now := time.Now().UTC()
	conv.Messages = append(conv.Messages, chat.Message{
		Role:      chat.RoleUser,
		Content:   message,
		Timestamp: now,
	})

	text, err := s.generate(ctx, message)
	if err != nil {
		return Reply{}, err
	}

	conv.Messages = append(conv.Messages, chat.Message{
		Role:      chat.RoleAssistant,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	conv.UpdatedAt = time.Now().UTC()

	if err := s.conversations.Save(ctx, conv); err != nil {
		return Reply{}, fmt.Errorf("failed to save conversation: %w", err)
	}

	return Reply{
		Response:       text,
		ConversationID: conv.ID,
		Title:          conv.Title,
	}, nil
}

// CreateConversation provisions an empty conversation for the owner. A blank
// title falls back to the default.
func (s *Service) CreateConversation(ctx context.Context, ownerID, title string) (chat.Conversation, error) {
	if title == "" {
		title = chat.DefaultTitle
	}

	now := time.Now().UTC()
	conv := chat.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Messages:  make([]chat.Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.conversations.Create(ctx, conv); err != nil {
		return chat.Conversation{}, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns the owner's conversations, newest-updated first.
func (s *Service) ListConversations(ctx context.Context, ownerID string) ([]chat.Summary, error) {
	return s.conversations.ListByOwner(ctx, ownerID)
}

// Messages returns the stored transcript of an owned conversation.
func (s *Service) Messages(ctx context.Context, ownerID, conversationID string) ([]chat.Message, error) {
	conv, err := s.conversations.Get(ctx, ownerID, conversationID)
	if errors.Is(err, store.ErrConversationNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return conv.Messages, nil
}

// DeleteConversation permanently removes an owned conversation.
func (s *Service) DeleteConversation(ctx context.Context, ownerID, conversationID string) error {
	err := s.conversations.Delete(ctx, ownerID, conversationID)
	if errors.Is(err, store.ErrConversationNotFound) {
		return ErrConversationNotFound
	}
	return err
}

func (s *Service) generate(ctx context.Context, message string) (string, error) {
	text, err := s.generator.Generate(ctx, message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if text == "" {
		return "", ErrGenerationFailed
	}
	return text, nil
}

// DeriveTitle truncates the first message to the title cap, appending an
// ellipsis marker when it was cut.
func DeriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}
