package store

import (
	"context"
	"errors"

	"github.com/joshfermano/perpsbot/server/internal/model/chat"
	"github.com/joshfermano/perpsbot/server/internal/model/user"
)

var (
	// ErrConversationNotFound covers both a missing record and a record owned
	// by someone else. Callers cannot tell the two apart.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrUserNotFound is returned by user lookups that match nothing.
	ErrUserNotFound = errors.New("user not found")
)

// ConversationStore is the keyed record store behind the message pipeline.
// Every operation that takes an owner enforces ownership: a conversation that
// exists but belongs to another owner behaves exactly like one that does not
// exist.
type ConversationStore interface {
	Create(ctx context.Context, conv chat.Conversation) error
	ListByOwner(ctx context.Context, ownerID string) ([]chat.Summary, error)
	Get(ctx context.Context, ownerID, id string) (chat.Conversation, error)
	// Save replaces the whole record in one write.
	Save(ctx context.Context, conv chat.Conversation) error
	Delete(ctx context.Context, ownerID, id string) error
}

// UserStore persists registered accounts.
type UserStore interface {
	Insert(ctx context.Context, u user.User) error
	FindByEmail(ctx context.Context, email string) (user.User, error)
	// Exists reports whether the username or the email is already taken.
	Exists(ctx context.Context, username, email string) (bool, error)
}
