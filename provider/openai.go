package provider

import (
	"context"
	"errors"
	"net/http"
)

const chatTemperature = 0.7

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatCompleter speaks the OpenAI chat completions protocol, shared by
// OpenAI, DeepSeek and GLM.
type chatCompleter struct {
	vendor     VendorID
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func newChatCompleter(cfg Config, client *http.Client) *chatCompleter {
	return &chatCompleter{
		vendor:     cfg.VendorID,
		apiKey:     cfg.Credential,
		baseURL:    cfg.Endpoint,
		model:      cfg.ModelName,
		maxTokens:  cfg.MaxTokens,
		httpClient: client,
	}
}

func (c *chatCompleter) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: chatTemperature,
		MaxTokens:   c.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := postJSON(ctx, c.httpClient, c.vendor, joinURL(c.baseURL, "/chat/completions"), headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Vendor: c.vendor, Err: errors.New("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
