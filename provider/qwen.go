package provider

import (
	"context"
	"errors"
	"net/http"
)

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []chatMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Text    string `json:"text"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// qwenCompleter talks to the DashScope text generation endpoint.
type qwenCompleter struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func newQwenCompleter(cfg Config, client *http.Client) *qwenCompleter {
	return &qwenCompleter{
		apiKey:     cfg.Credential,
		baseURL:    cfg.Endpoint,
		model:      cfg.ModelName,
		maxTokens:  cfg.MaxTokens,
		httpClient: client,
	}
}

func (c *qwenCompleter) complete(ctx context.Context, system, user string) (string, error) {
	var req qwenRequest
	req.Model = c.model
	req.Input.Messages = []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	req.Parameters.MaxTokens = c.maxTokens
	req.Parameters.Temperature = chatTemperature

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp qwenResponse
	url := joinURL(c.baseURL, "/services/aigc/text-generation/generation")
	if err := postJSON(ctx, c.httpClient, VendorQwen, url, headers, req, &resp); err != nil {
		return "", err
	}

	if resp.Output.Text != "" {
		return resp.Output.Text, nil
	}
	if len(resp.Output.Choices) > 0 {
		return resp.Output.Choices[0].Message.Content, nil
	}
	msg := "no output text in response"
	if resp.Message != "" {
		msg = resp.Code + ": " + resp.Message
	}
	return "", &ProviderError{Vendor: VendorQwen, Err: errors.New(msg)}
}
