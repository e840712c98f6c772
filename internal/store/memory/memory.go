package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/joshfermano/perpsbot/server/internal/model/chat"
	"github.com/joshfermano/perpsbot/server/internal/model/user"
	"github.com/joshfermano/perpsbot/server/internal/store"
)

// ConversationStore implements store.ConversationStore with in-memory maps,
// suitable for tests and local development without a database.
type ConversationStore struct {
	mu    sync.RWMutex
	items map[string]chat.Conversation
}

// NewConversationStore returns an empty in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{items: make(map[string]chat.Conversation)}
}

// Create inserts the conversation record.
func (s *ConversationStore) Create(_ context.Context, conv chat.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[conv.ID] = cloneConversation(conv)
	return nil
}

// ListByOwner returns summaries for the owner, newest-updated first.
func (s *ConversationStore) ListByOwner(_ context.Context, ownerID string) ([]chat.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]chat.Summary, 0)
	for _, conv := range s.items {
		if conv.OwnerID == ownerID {
			summaries = append(summaries, conv.Summarize())
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	return summaries, nil
}

// Get retrieves a conversation scoped to its owner.
func (s *ConversationStore) Get(_ context.Context, ownerID, id string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.items[id]
	if !ok || conv.OwnerID != ownerID {
		return chat.Conversation{}, store.ErrConversationNotFound
	}
	return cloneConversation(conv), nil
}

// Save replaces the stored record wholesale.
func (s *ConversationStore) Save(_ context.Context, conv chat.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[conv.ID]
	if !ok || existing.OwnerID != conv.OwnerID {
		return store.ErrConversationNotFound
	}
	s.items[conv.ID] = cloneConversation(conv)
	return nil
}

// Delete removes the record under the same ownership rule as Get.
func (s *ConversationStore) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.items[id]
	if !ok || conv.OwnerID != ownerID {
		return store.ErrConversationNotFound
	}
	delete(s.items, id)
	return nil
}

func cloneConversation(conv chat.Conversation) chat.Conversation {
	copied := conv
	copied.Messages = append([]chat.Message(nil), conv.Messages...)
	return copied
}

// UserStore implements store.UserStore in memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]user.User
}

// NewUserStore returns an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]user.User)}
}

// Insert stores the account record.
func (s *UserStore) Insert(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

// FindByEmail looks an account up by email.
func (s *UserStore) FindByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, store.ErrUserNotFound
}

// Exists reports whether the username or email is already taken.
func (s *UserStore) Exists(_ context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}
