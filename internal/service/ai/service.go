package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/joshfermano/perpsbot/server/internal/config"
)

// Service is the generation collaborator backing the message pipeline. Each
// call is stateless: the chain sees the system persona plus the single user
// prompt, never prior turns.
type Service struct {
	chatModel model.ChatModel
	system    string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the generation service from configuration. It is built
// once at startup and injected; nothing here is package-global.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		system:    cfg.SystemPrompt,
		chain:     runnable,
	}, nil
}

// Generate runs the chain for a single user prompt and returns the completion
// text.
func (s *Service) Generate(ctx context.Context, userPrompt string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.system,
		"query":  userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Printf("[ai] generated response, length=%d", len(response.Content))
	return response.Content, nil
}
