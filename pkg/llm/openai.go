package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/apperrors"
	"github.com/ekaya-inc/joinplanner/pkg/models"
	"github.com/ekaya-inc/joinplanner/pkg/retry"
)

// OpenAIReasoner escalates fix attempts to an OpenAI-compatible endpoint.
type OpenAIReasoner struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIReasoner creates a reasoner backed by an OpenAI-compatible
// endpoint.
func NewOpenAIReasoner(cfg *Config, logger *zap.Logger) (*OpenAIReasoner, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIReasoner{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("reasoner-openai"),
	}, nil
}

// AttemptFix implements Reasoner. Transport-level hiccups are retried with
// backoff inside this call; whether a failed fix is attempted again is the
// correction pipeline's decision, never this client's.
func (r *OpenAIReasoner) AttemptFix(ctx context.Context, query string, normErr models.NormalizedError) (string, error) {
	prompt := buildFixPrompt(query, normErr)

	r.logger.Debug("Escalating query fix",
		zap.String("model", r.model),
		zap.String("error_type", normErr.Type.String()),
		zap.Int("query_len", len(query)))

	start := time.Now()

	resp, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (openai.ChatCompletionResponse, error) {
		return r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: fixSystemMessage},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0,
		})
	})
	if err != nil {
		r.logger.Error("Escalation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("reasoner request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	r.logger.Info("Escalation completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	fixed, ok := parseFixReply(resp.Choices[0].Message.Content)
	if !ok {
		return "", fmt.Errorf("%w: %s error", apperrors.ErrUnfixable, normErr.Type)
	}
	return fixed, nil
}

// Ensure OpenAIReasoner implements Reasoner at compile time.
var _ Reasoner = (*OpenAIReasoner)(nil)
