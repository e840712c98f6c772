package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/joshfermano/perpsbot/server/internal/model/chat"
	"github.com/joshfermano/perpsbot/server/internal/model/user"
	"github.com/joshfermano/perpsbot/server/internal/store"
)

const (
	conversationsCollection = "conversations"
	usersCollection         = "users"

	connectTimeout = 10 * time.Second
)

// Client wraps a connected MongoDB client and database handle.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping. Startup is
// expected to treat a failure here as fatal.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{client: client, db: client.Database(database)}, nil
}

// Disconnect releases the underlying connection pool.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// ConversationStore returns the conversation adapter backed by this client.
func (c *Client) ConversationStore() *ConversationStore {
	return &ConversationStore{coll: c.db.Collection(conversationsCollection)}
}

// UserStore returns the account adapter backed by this client.
func (c *Client) UserStore() *UserStore {
	return &UserStore{coll: c.db.Collection(usersCollection)}
}

// ConversationStore implements store.ConversationStore over a MongoDB
// collection. Ownership is enforced by filtering every query on ownerId, so a
// conversation belonging to another owner is indistinguishable from a missing
// one.
type ConversationStore struct {
	coll *mongo.Collection
}

// Create inserts a new conversation record.
func (s *ConversationStore) Create(ctx context.Context, conv chat.Conversation) error {
	if _, err := s.coll.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's conversations, newest-updated first,
// projected to sidebar summaries.
func (s *ConversationStore) ListByOwner(ctx context.Context, ownerID string) ([]chat.Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.D{
			{Key: "title", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "updatedAt", Value: 1},
		})

	cursor, err := s.coll.Find(ctx, bson.D{{Key: "ownerId", Value: ownerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := make([]chat.Summary, 0)
	for cursor.Next(ctx) {
		var conv chat.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		summaries = append(summaries, conv.Summarize())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return summaries, nil
}

// Get fetches the full record including messages, scoped to the owner.
func (s *ConversationStore) Get(ctx context.Context, ownerID, id string) (chat.Conversation, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "ownerId", Value: ownerID}}

	var conv chat.Conversation
	err := s.coll.FindOne(ctx, filter).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return chat.Conversation{}, store.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return conv, nil
}

// Save replaces the stored record in a single write.
func (s *ConversationStore) Save(ctx context.Context, conv chat.Conversation) error {
	filter := bson.D{{Key: "_id", Value: conv.ID}, {Key: "ownerId", Value: conv.OwnerID}}

	res, err := s.coll.ReplaceOne(ctx, filter, conv)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrConversationNotFound
	}
	return nil
}

// Delete removes the record. A repeat delete reports not-found, which callers
// treat as already gone.
func (s *ConversationStore) Delete(ctx context.Context, ownerID, id string) error {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "ownerId", Value: ownerID}}

	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrConversationNotFound
	}
	return nil
}

// UserStore implements store.UserStore over a MongoDB collection.
type UserStore struct {
	coll *mongo.Collection
}

// Insert stores a new account record.
func (s *UserStore) Insert(ctx context.Context, u user.User) error {
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByEmail looks an account up by email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := s.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, store.ErrUserNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

// Exists reports whether the username or email is already registered.
func (s *UserStore) Exists(ctx context.Context, username, email string) (bool, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "email", Value: email}},
	}}}

	count, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}
