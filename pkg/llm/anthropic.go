package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/apperrors"
	"github.com/ekaya-inc/joinplanner/pkg/models"
	"github.com/ekaya-inc/joinplanner/pkg/retry"
)

const anthropicMaxTokens = 2048

// AnthropicReasoner escalates fix attempts to the Anthropic Messages API.
type AnthropicReasoner struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicReasoner creates a reasoner backed by the Anthropic API.
func NewAnthropicReasoner(cfg *Config, logger *zap.Logger) (*AnthropicReasoner, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}

	return &AnthropicReasoner{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		logger: logger.Named("reasoner-anthropic"),
	}, nil
}

// AttemptFix implements Reasoner.
func (r *AnthropicReasoner) AttemptFix(ctx context.Context, query string, normErr models.NormalizedError) (string, error) {
	prompt := buildFixPrompt(query, normErr)

	r.logger.Debug("Escalating query fix",
		zap.String("model", r.model),
		zap.String("error_type", normErr.Type.String()),
		zap.Int("query_len", len(query)))

	start := time.Now()

	resp, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (anthropic.MessagesResponse, error) {
		return r.client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model:     anthropic.Model(r.model),
			System:    fixSystemMessage,
			MaxTokens: anthropicMaxTokens,
			Messages: []anthropic.Message{
				anthropic.NewUserTextMessage(prompt),
			},
		})
	})
	if err != nil {
		r.logger.Error("Escalation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("reasoner request: %w", err)
	}

	r.logger.Info("Escalation completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	fixed, ok := parseFixReply(resp.GetFirstContentText())
	if !ok {
		return "", fmt.Errorf("%w: %s error", apperrors.ErrUnfixable, normErr.Type)
	}
	return fixed, nil
}

// Ensure AnthropicReasoner implements Reasoner at compile time.
var _ Reasoner = (*AnthropicReasoner)(nil)
