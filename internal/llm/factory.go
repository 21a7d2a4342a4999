package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/treelint/internal/model"
)

// NewProvider builds the configured summarizer backend. An empty
// provider name is not an error: it means summaries stay off.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel maps the yaml-facing config onto the provider config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:        mc.Provider,
		Model:           mc.Model,
		APIKey:          mc.APIKey,
		BaseURL:         mc.BaseURL,
		Timeout:         mc.Timeout,
		StrictCitations: mc.StrictCitations,
		MaxTokens:       mc.MaxTokens,
		HTTPProxy:       mc.HTTPProxy,
		HTTPSProxy:      mc.HTTPSProxy,
		NoProxy:         mc.NoProxy,
	}
}
