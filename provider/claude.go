package provider

import (
	"context"
	"errors"
	"net/http"
)

const anthropicVersion = "2023-06-01"

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// claudeCompleter talks to the Anthropic Messages API.
type claudeCompleter struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func newClaudeCompleter(cfg Config, client *http.Client) *claudeCompleter {
	return &claudeCompleter{
		apiKey:     cfg.Credential,
		baseURL:    cfg.Endpoint,
		model:      cfg.ModelName,
		maxTokens:  cfg.MaxTokens,
		httpClient: client,
	}
}

func (c *claudeCompleter) complete(ctx context.Context, system, user string) (string, error) {
	req := claudeRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: user}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp claudeResponse
	if err := postJSON(ctx, c.httpClient, VendorClaude, joinURL(c.baseURL, "/messages"), headers, req, &resp); err != nil {
		return "", err
	}
	return firstAnthropicText(VendorClaude, resp)
}

func firstAnthropicText(vendor VendorID, resp claudeResponse) (string, error) {
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			return block.Text, nil
		}
	}
	return "", &ProviderError{Vendor: vendor, Err: errors.New("no text content in response")}
}
