package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

const bedrockAnthropicVersion = "bedrock-2023-05-31"

// bedrockInvoker is the slice of the Bedrock runtime client the completer uses.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// bedrockCompleter invokes Anthropic models hosted on AWS Bedrock.
type bedrockCompleter struct {
	client    bedrockInvoker
	modelID   string
	maxTokens int
}

func newBedrockCompleter(cfg Config) (*bedrockCompleter, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Endpoint),
		config.WithRetryMaxAttempts(1),
	}
	if cfg.Credential != "" {
		accessKey, secretKey, ok := strings.Cut(cfg.Credential, ":")
		if !ok || accessKey == "" || secretKey == "" {
			return nil, fmt.Errorf("%w: bedrock credential must be ACCESS_KEY:SECRET_KEY", ErrMissingCredential)
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &bedrockCompleter{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		modelID:   cfg.ModelName,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (c *bedrockCompleter) complete(ctx context.Context, system, user string) (string, error) {
	requestBody := map[string]interface{}{
		"anthropic_version": bedrockAnthropicVersion,
		"max_tokens":        c.maxTokens,
		"system":            system,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": user},
				},
			},
		},
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", bedrockError(err)
	}

	var resp claudeResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", &ProviderError{Vendor: VendorBedrock, Body: string(output.Body), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return firstAnthropicText(VendorBedrock, resp)
}

func bedrockError(err error) error {
	pe := &ProviderError{Vendor: VendorBedrock, Err: err}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		pe.StatusCode = respErr.HTTPStatusCode()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		pe.Body = apiErr.ErrorMessage()
	}
	return pe
}
