package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Reasoner providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewReasoner creates a reasoner client for the configured provider.
func NewReasoner(cfg *Config, logger *zap.Logger) (Reasoner, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIReasoner(cfg, logger)
	case ProviderAnthropic:
		return NewAnthropicReasoner(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown reasoner provider %q", cfg.Provider)
	}
}
