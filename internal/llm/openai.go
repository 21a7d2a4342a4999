package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider renders audit narratives through the OpenAI Chat
// Completions API via the sashabaranov client.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider validates the key and prepares the SDK client.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	// No client-level timeout here; each completion call carries its
	// own context deadline.
	clientConfig.HTTPClient = newHTTPClient(config, 0)

	client := openai.NewClientWithConfig(clientConfig)

	return &OpenAIProvider{
		client: client,
		config: config,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable lists models, the cheapest call that exercises the key.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		// Surface the actual error so users can diagnose API key issues
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Summarize runs the audit prompt through a chat completion and
// enforces the citation rules on whatever comes back.
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	model := firstNonEmpty(req.Model, p.config.Model, openai.GPT4oMini)

	// The client carries no timeout of its own; bound each call here
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: auditSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.resolvePrompt()},
		},
		MaxTokens:   firstPositive(req.MaxTokens, p.config.MaxTokens, defaultMaxTokens),
		Temperature: summaryTemperature,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	citedIDs, err := verifyCitations(summary, req.PersonIDs, p.config.StrictCitations)
	if err != nil {
		return nil, err
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedIDs:   citedIDs,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
