package chat

import "time"

// DefaultTitle is assigned to conversations created without a caller-supplied
// title. It is replaced when the first message arrives.
const DefaultTitle = "New Chat"

// GuestConversationID marks an exchange with no server-side persistence.
const GuestConversationID = "guest"

// Conversation is an owned, titled, ordered sequence of messages. Exactly one
// owner may read, mutate or delete it.
type Conversation struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"-" bson:"ownerId"`
	Title     string    `json:"title" bson:"title"`
	Messages  []Message `json:"messages" bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Summary is the sidebar projection of a conversation.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// Summarize projects the conversation for list views. The timestamp prefers
// the last update so recently active conversations sort first.
func (c Conversation) Summarize() Summary {
	ts := c.UpdatedAt
	if ts.IsZero() {
		ts = c.CreatedAt
	}
	return Summary{ID: c.ID, Title: c.Title, Timestamp: ts}
}
