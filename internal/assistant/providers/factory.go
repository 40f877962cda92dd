package providers

import (
	"fmt"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/config"
)

// New builds the provider named by the configuration.
func New(cfg config.LLMConfig) (assistant.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey)
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
