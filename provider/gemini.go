package provider

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// geminiCompleter uses the Google GenAI SDK against the Gemini API.
type geminiCompleter struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func newGeminiCompleter(cfg Config, httpClient *http.Client) (*geminiCompleter, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.Credential,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, err
	}

	return &geminiCompleter{
		client:    client,
		model:     cfg.ModelName,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (c *geminiCompleter) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(c.maxTokens),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{Vendor: VendorGemini, StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
		}
		return "", &ProviderError{Vendor: VendorGemini, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &ProviderError{Vendor: VendorGemini, Err: errors.New("no text in response")}
	}
	return text, nil
}
