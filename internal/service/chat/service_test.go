package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	chatmodel "github.com/joshfermano/perpsbot/server/internal/model/chat"
	chat "github.com/joshfermano/perpsbot/server/internal/service/chat"
	"github.com/joshfermano/perpsbot/server/internal/store/memory"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func echoGenerator() chat.Generator {
	return generatorFunc(func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})
}

func failingGenerator(err error) chat.Generator {
	return generatorFunc(func(context.Context, string) (string, error) {
		return "", err
	})
}

func TestSendGuest(t *testing.T) {
	svc := chat.NewService(memory.NewConversationStore(), echoGenerator())

	reply, err := svc.SendGuest(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("SendGuest err: %v", err)
	}
	if reply.ConversationID != "guest" {
		t.Fatalf("unexpected conversation id: %q", reply.ConversationID)
	}
	if reply.Response != "echo: Hello" {
		t.Fatalf("unexpected response: %q", reply.Response)
	}
}

func TestSendGuestGenerationFailure(t *testing.T) {
	svc := chat.NewService(memory.NewConversationStore(), failingGenerator(errors.New("backend down")))

	if _, err := svc.SendGuest(context.Background(), "Hello"); !errors.Is(err, chat.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestSendAppendsBothTurns(t *testing.T) {
	store := memory.NewConversationStore()
	svc := chat.NewService(store, echoGenerator())
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	reply, err := svc.Send(ctx, "owner-1", conv.ID, "What programs are offered?")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if reply.ConversationID != conv.ID {
		t.Fatalf("unexpected conversation id: %q", reply.ConversationID)
	}

	messages, err := svc.Messages(ctx, "owner-1", conv.ID)
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != chatmodel.RoleUser || messages[0].Content != "What programs are offered?" {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[1].Role != chatmodel.RoleAssistant || messages[1].Content == "" {
		t.Fatalf("unexpected second message: %+v", messages[1])
	}
}

func TestSendTitleDerivation(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "short message kept verbatim",
			message: "What programs are offered?",
			want:    "What programs are offered?",
		},
		{
			name:    "exactly fifty characters kept verbatim",
			message: strings.Repeat("a", 50),
			want:    strings.Repeat("a", 50),
		},
		{
			name:    "long message truncated with ellipsis",
			message: strings.Repeat("a", 51),
			want:    strings.Repeat("a", 50) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConversationStore()
			svc := chat.NewService(store, echoGenerator())
			ctx := context.Background()

			conv, err := svc.CreateConversation(ctx, "owner-1", "")
			if err != nil {
				t.Fatalf("CreateConversation err: %v", err)
			}

			reply, err := svc.Send(ctx, "owner-1", conv.ID, tt.message)
			if err != nil {
				t.Fatalf("Send err: %v", err)
			}
			if reply.Title != tt.want {
				t.Fatalf("unexpected title: got %q want %q", reply.Title, tt.want)
			}
		})
	}
}

func TestSendTitleSetOnlyOnce(t *testing.T) {
	store := memory.NewConversationStore()
	svc := chat.NewService(store, echoGenerator())
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	first, err := svc.Send(ctx, "owner-1", conv.ID, "first message")
	if err != nil {
		t.Fatalf("first Send err: %v", err)
	}
	second, err := svc.Send(ctx, "owner-1", conv.ID, "second message")
	if err != nil {
		t.Fatalf("second Send err: %v", err)
	}

	if first.Title != "first message" {
		t.Fatalf("unexpected first title: %q", first.Title)
	}
	if second.Title != "first message" {
		t.Fatalf("title changed on second message: %q", second.Title)
	}
}

func TestSendConversationNotFound(t *testing.T) {
	svc := chat.NewService(memory.NewConversationStore(), echoGenerator())

	if _, err := svc.Send(context.Background(), "owner-1", "missing", "hello"); !errors.Is(err, chat.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestSendOtherOwnerLooksMissing(t *testing.T) {
	store := memory.NewConversationStore()
	svc := chat.NewService(store, echoGenerator())
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	if _, err := svc.Send(ctx, "owner-2", conv.ID, "hello"); !errors.Is(err, chat.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestSendGenerationFailurePersistsNothing(t *testing.T) {
	store := memory.NewConversationStore()
	svc := chat.NewService(store, failingGenerator(errors.New("backend down")))
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	if _, err := svc.Send(ctx, "owner-1", conv.ID, "hello"); !errors.Is(err, chat.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	// The save is skipped on failure, so the stored record stays untouched.
	messages, err := svc.Messages(ctx, "owner-1", conv.ID)
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no persisted messages, got %d", len(messages))
	}
}

func TestEmptyCompletionIsGenerationFailure(t *testing.T) {
	svc := chat.NewService(memory.NewConversationStore(), generatorFunc(func(context.Context, string) (string, error) {
		return "", nil
	}))

	if _, err := svc.SendGuest(context.Background(), "hello"); !errors.Is(err, chat.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestCreateConversationDefaults(t *testing.T) {
	svc := chat.NewService(memory.NewConversationStore(), echoGenerator())

	conv, err := svc.CreateConversation(context.Background(), "owner-1", "")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}
	if conv.Title != chatmodel.DefaultTitle {
		t.Fatalf("unexpected default title: %q", conv.Title)
	}
	if conv.ID == "" {
		t.Fatal("expected generated id")
	}
	if len(conv.Messages) != 0 {
		t.Fatalf("expected empty conversation, got %d messages", len(conv.Messages))
	}
}

func TestListConversationsNewestFirst(t *testing.T) {
	store := memory.NewConversationStore()
	svc := chat.NewService(store, echoGenerator())
	ctx := context.Background()

	first, err := svc.CreateConversation(ctx, "owner-1", "first")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}
	second, err := svc.CreateConversation(ctx, "owner-1", "second")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	// Sending a message bumps UpdatedAt, surfacing the conversation first.
	if _, err := svc.Send(ctx, "owner-1", first.ID, "hello"); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	summaries, err := svc.ListConversations(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ListConversations err: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != first.ID || summaries[1].ID != second.ID {
		t.Fatalf("unexpected order: %q then %q", summaries[0].ID, summaries[1].ID)
	}
}

func TestDeleteConversation(t *testing.T) {
	store := memory.NewConversationStore()
	svc := chat.NewService(store, echoGenerator())
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, "owner-1", "")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	// Another owner cannot delete it, and learns nothing from the failure.
	if err := svc.DeleteConversation(ctx, "owner-2", conv.ID); !errors.Is(err, chat.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for other owner, got %v", err)
	}

	if err := svc.DeleteConversation(ctx, "owner-1", conv.ID); err != nil {
		t.Fatalf("DeleteConversation err: %v", err)
	}

	if _, err := svc.Messages(ctx, "owner-1", conv.ID); !errors.Is(err, chat.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound after delete, got %v", err)
	}
	if err := svc.DeleteConversation(ctx, "owner-1", conv.ID); !errors.Is(err, chat.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound on repeat delete, got %v", err)
	}
}
