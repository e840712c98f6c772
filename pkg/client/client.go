// Package client implements the chat client's state reconciliation: one
// visible message list sourced from either the server (authenticated) or a
// local guest mirror, with explicit transitions between the two tiers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/joshfermano/perpsbot/server/internal/model/chat"
	"github.com/joshfermano/perpsbot/server/internal/model/user"
)

// guestStorageKey is the fixed local-storage key holding the serialized guest
// message list.
const guestStorageKey = "guestChat"

// fallbackReply is shown in place of an assistant turn when the transport or
// the backend fails, keeping the chat surface uninterrupted.
const fallbackReply = "Sorry, I'm having trouble connecting. Please try again later."

// Client talks to the chat API and maintains exactly one visible message
// list. It is not safe for concurrent use; drive it from a single goroutine
// the way a UI event loop would.
type Client struct {
	baseURL string
	http    *http.Client
	local   LocalStore

	user               *user.Public
	activeConversation string
	messages           []chat.Message
}

// New builds a client against baseURL. Guest history is loaded from the local
// store immediately, so a fresh process resumes the prior guest session.
func New(baseURL string, local LocalStore) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar, Timeout: 60 * time.Second},
		local:   local,
	}
	c.loadGuestMirror()
	return c, nil
}

// Authenticated reports whether the client currently holds a server session.
func (c *Client) Authenticated() bool {
	return c.user != nil
}

// User returns the signed-in account, if any.
func (c *Client) User() (user.Public, bool) {
	if c.user == nil {
		return user.Public{}, false
	}
	return *c.user, true
}

// ActiveConversation returns the id of the conversation messages are sent to.
func (c *Client) ActiveConversation() string {
	return c.activeConversation
}

// Messages returns the visible message list.
func (c *Client) Messages() []chat.Message {
	return append([]chat.Message(nil), c.messages...)
}

// Register creates an account and switches to the server tier.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var result struct {
		User user.Public `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return err
	}
	return c.enterAuthenticated(ctx, result.User)
}

// Login starts a session and switches to the server tier. Guest history is
// discarded, never migrated.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var result struct {
		User user.Public `json:"user"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return err
	}
	return c.enterAuthenticated(ctx, result.User)
}

// Restore asks the server whether the held cookie is still a valid session
// and, if so, switches to the server tier. Used on startup.
func (c *Client) Restore(ctx context.Context) error {
	var result user.Public
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/verify", nil, &result); err != nil {
		return err
	}
	return c.enterAuthenticated(ctx, result)
}

// Logout ends the session, clears the guest mirror and resets the visible
// state to empty.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}

	c.user = nil
	c.activeConversation = ""
	c.messages = nil
	return c.local.Remove(guestStorageKey)
}

// Conversations lists the signed-in user's conversations.
func (c *Client) Conversations(ctx context.Context) ([]chat.Summary, error) {
	var summaries []chat.Summary
	if err := c.doJSON(ctx, http.MethodGet, "/api/conversations", nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// NewConversation creates a conversation and makes it the active target.
func (c *Client) NewConversation(ctx context.Context, title string) (chat.Summary, error) {
	body := map[string]string{}
	if title != "" {
		body["title"] = title
	}

	var summary chat.Summary
	if err := c.doJSON(ctx, http.MethodPost, "/api/conversations", body, &summary); err != nil {
		return chat.Summary{}, err
	}

	c.activeConversation = summary.ID
	c.messages = nil
	return summary, nil
}

// OpenConversation switches the active conversation and refetches its
// transcript. The server copy is always authoritative.
func (c *Client) OpenConversation(ctx context.Context, id string) error {
	c.activeConversation = id
	return c.refetch(ctx)
}

// DeleteConversation removes a conversation. When it was the active one, the
// visible list empties.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	path := "/api/conversations/" + id
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	if c.activeConversation == id {
		c.activeConversation = ""
		c.messages = nil
	}
	return nil
}

// Send submits a message and appends the reply. Transport or generation
// failures append the fallback assistant turn instead of surfacing an error.
func (c *Client) Send(ctx context.Context, message string) {
	c.messages = append(c.messages, chat.Message{
		Role:      chat.RoleUser,
		Content:   message,
		Timestamp: time.Now().UTC(),
	})

	conversationID := chat.GuestConversationID
	if c.Authenticated() {
		conversationID = c.activeConversation
	}

	var result struct {
		Response string `json:"response"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/chats/message", map[string]string{
		"message":        message,
		"conversationId": conversationID,
	}, &result)

	reply := result.Response
	if err != nil {
		reply = fallbackReply
	}

	c.messages = append(c.messages, chat.Message{
		Role:      chat.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})

	if !c.Authenticated() {
		c.saveGuestMirror()
	}
}

// ClearConversation wipes guest state. It has no effect for authenticated
// users, who delete whole conversations instead.
func (c *Client) ClearConversation() error {
	if c.Authenticated() {
		return nil
	}
	c.messages = nil
	return c.local.Remove(guestStorageKey)
}

// enterAuthenticated performs the guest-to-member transition: drop the guest
// mirror and make sure the UI has an active server-side target.
func (c *Client) enterAuthenticated(ctx context.Context, u user.Public) error {
	c.user = &u
	c.messages = nil
	if err := c.local.Remove(guestStorageKey); err != nil {
		return err
	}

	summaries, err := c.Conversations(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		_, err := c.NewConversation(ctx, "")
		return err
	}

	c.activeConversation = summaries[0].ID
	return c.refetch(ctx)
}

func (c *Client) refetch(ctx context.Context) error {
	if c.activeConversation == "" {
		c.messages = nil
		return nil
	}

	var result struct {
		Messages []chat.Message `json:"messages"`
	}
	path := "/api/conversations/" + c.activeConversation + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return err
	}
	c.messages = result.Messages
	return nil
}

func (c *Client) loadGuestMirror() {
	raw, ok, err := c.local.Get(guestStorageKey)
	if err != nil || !ok {
		return
	}

	var messages []chat.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		// A corrupt mirror is dropped rather than crashing the client.
		_ = c.local.Remove(guestStorageKey)
		return
	}
	c.messages = messages
}

func (c *Client) saveGuestMirror() {
	data, err := json.Marshal(c.messages)
	if err != nil {
		return
	}
	_ = c.local.Set(guestStorageKey, string(data))
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Message)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
