// Package provider adapts AI vendors to one capability set: screen analysis,
// test case generation and report generation.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
)

// VendorID names an AI backend.
type VendorID string

const (
	VendorClaude   VendorID = "claude"
	VendorDeepSeek VendorID = "deepseek"
	VendorOpenAI   VendorID = "openai"
	VendorGemini   VendorID = "gemini"
	VendorQwen     VendorID = "qwen"
	VendorGLM      VendorID = "glm"
	VendorBedrock  VendorID = "bedrock"
)

const (
	// DefaultMaxTokens bounds every completion.
	DefaultMaxTokens = 4000

	// DefaultTimeout bounds a single vendor request.
	DefaultTimeout = 5 * time.Minute
)

var (
	// ErrUnsupportedProvider is matched by *UnsupportedProviderError.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingCredential is returned when a vendor that needs an API key has none.
	ErrMissingCredential = errors.New("provider credential is required")

	// ErrNoProviderSelected is returned by Selector.Current before any Select.
	ErrNoProviderSelected = errors.New("no provider selected")
)

// Provider is the capability set every vendor exposes. Each call issues
// exactly one outbound request.
type Provider interface {
	Vendor() VendorID
	Model() string

	// Analyze fills the template from cfg and returns the decoded analysis.
	// Undecodable replies come back as the Decode sentinel, not an error.
	Analyze(ctx context.Context, cfg testcase.RunConfig, promptTemplate string) (any, error)

	// GenerateTestCases derives test cases from a previous analysis.
	GenerateTestCases(ctx context.Context, analysis any, promptTemplate string) (*testcase.Set, error)

	// GenerateReport renders a report over subject, which is usually a
	// *testcase.Set or an execution result.
	GenerateReport(ctx context.Context, subject any, promptTemplate string) (string, error)
}

// Config selects and parameterizes a vendor. Endpoint and ModelName fall
// back to the vendor defaults when empty. For bedrock, Endpoint is the AWS
// region and Credential is optionally "ACCESS_KEY:SECRET_KEY".
type Config struct {
	VendorID   VendorID      `mapstructure:"vendor"`
	Credential string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"base_url"`
	ModelName  string        `mapstructure:"model"`
	MaxTokens  int           `mapstructure:"max_tokens"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// UnsupportedProviderError is returned by New for an unknown vendor id.
type UnsupportedProviderError struct {
	VendorID VendorID
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %q", e.VendorID)
}

// Is reports whether target is ErrUnsupportedProvider.
func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}

// ProviderError is a transport, authentication or envelope failure from a
// vendor. StatusCode is zero when no HTTP response was received.
type ProviderError struct {
	Vendor     VendorID
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s request failed", e.Vendor)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Body != "" {
		msg += ": " + truncate(e.Body, 500)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Option customizes adapter construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     logger.Logger
}

// WithHTTPClient overrides the HTTP client used by HTTP based vendors.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets the logger used by the adapter.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
