// Package ai implements the completion provider on top of the eino chain
// API: a prompt template carrying the system prompt, the replayed history
// and the final query, compiled against an Ark chat model.
package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/andrasd/parlor/internal/config"
	"github.com/andrasd/parlor/internal/model/chat"
)

var ErrProviderFailure = errors.New("completion provider failure")

// Request carries one completion round-trip: the assembled system prompt,
// the prior turns in replay order, and the final user utterance.
type Request struct {
	SystemPrompt    string
	History         []chat.Turn
	Query           string
	Model           string
	MaxOutputTokens int
}

// Service is the engine's completion provider. Chains are compiled per
// (model, token cap) pair and cached, so per-session generation parameters
// are honored without rebuilding on every call.
type Service struct {
	cfg config.AIConfig

	mu        sync.Mutex
	runnables map[string]compose.Runnable[map[string]any, *schema.Message]
}

// NewService validates the configuration by compiling the default chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	s := &Service{
		cfg:       cfg,
		runnables: make(map[string]compose.Runnable[map[string]any, *schema.Message]),
	}
	if _, err := s.runnableFor(ctx, "", 0); err != nil {
		return nil, err
	}
	return s, nil
}

// Complete sends one blocking completion request. The reply is returned in
// full or the whole call fails; there is no partial state.
func (s *Service) Complete(ctx context.Context, req Request) (string, error) {
	runnable, err := s.runnableFor(ctx, req.Model, req.MaxOutputTokens)
	if err != nil {
		return "", errors.Wrap(ErrProviderFailure, err.Error())
	}

	input := map[string]any{
		"system":  req.SystemPrompt,
		"history": historyMessages(req.History),
		"query":   req.Query,
	}

	response, err := runnable.Invoke(ctx, input)
	if err != nil {
		return "", errors.Wrap(ErrProviderFailure, err.Error())
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", errors.Wrap(ErrProviderFailure, "empty completion")
	}

	log.Debug().Int("history", len(req.History)).Int("length", len(response.Content)).
		Msg("completion received")
	return strings.TrimSpace(response.Content), nil
}

func (s *Service) runnableFor(ctx context.Context, modelID string, maxTokens int) (compose.Runnable[map[string]any, *schema.Message], error) {
	key := fmt.Sprintf("%s|%d", modelID, maxTokens)

	s.mu.Lock()
	defer s.mu.Unlock()
	if runnable, ok := s.runnables[key]; ok {
		return runnable, nil
	}

	chatModel, err := s.cfg.NewChatModel(ctx, modelID, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	s.runnables[key] = runnable
	return runnable, nil
}

// historyMessages converts the raw turn sequence into provider messages.
// Every stored turn goes on the wire, continuation sentinels and system
// placeholders included: the store order is the literal prompt history.
func historyMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(t.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(t.Content, nil))
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(t.Content))
		}
	}
	return history
}
