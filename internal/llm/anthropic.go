package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
	anthropicPingModel    = "claude-3-5-haiku-20241022"
	anthropicAPIVersion   = "2023-06-01"
)

// AnthropicProvider renders audit narratives through the Anthropic
// Messages API.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse decodes only what the summarizer reads; the API
// returns more.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicProvider validates the key and prepares the HTTP client.
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &AnthropicProvider{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(config, timeout),
		config:     config,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable fires a minimal completion to prove the key and endpoint
// actually work, not just that they are set.
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	// Cheapest possible call: a tiny completion on the small model
	ping := anthropicRequest{
		Model:     anthropicPingModel,
		MaxTokens: 10,
		Messages: []anthropicMessage{
			{Role: "user", Content: "Hi"},
		},
	}

	if _, err := p.makeRequest(ctx, ping); err != nil {
		// Surface the actual error so users can diagnose API key issues
		fmt.Fprintf(os.Stderr, "Anthropic API check failed: %v\n", err)
		return false
	}
	return true
}

// Summarize runs the audit prompt through Claude and enforces the
// citation rules on whatever comes back.
func (p *AnthropicProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	apiReq := anthropicRequest{
		Model:     firstNonEmpty(req.Model, p.config.Model, defaultAnthropicModel),
		MaxTokens: firstPositive(req.MaxTokens, p.config.MaxTokens, defaultMaxTokens),
		System:    auditSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.resolvePrompt()},
		},
		Temperature: summaryTemperature,
	}

	resp, err := p.makeRequest(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no content in Anthropic response")
	}

	summary := strings.TrimSpace(resp.Content[0].Text)
	citedIDs, err := verifyCitations(summary, req.PersonIDs, p.config.StrictCitations)
	if err != nil {
		return nil, err
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedIDs:   citedIDs,
		Model:      resp.Model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

func (p *AnthropicProvider) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var resp anthropicResponse
	err := postJSON(ctx, p.httpClient, p.baseURL+"/v1/messages", headers, apiReq, &resp,
		func(status int, body []byte) error {
			var apiErr anthropicError
			if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
				return fmt.Errorf("API error (%d): %s - %s", status, apiErr.Error.Type, apiErr.Error.Message)
			}
			return fmt.Errorf("API error (%d): %s", status, string(body))
		})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
