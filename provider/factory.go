package provider

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
)

// VendorInfo describes a supported vendor for listings.
type VendorInfo struct {
	ID              VendorID `json:"id"`
	Name            string   `json:"name"`
	DefaultEndpoint string   `json:"defaultEndpoint"`
	DefaultModel    string   `json:"defaultModel"`
	Recommended     bool     `json:"recommended"`
	NeedsCredential bool     `json:"needsCredential"`
}

var catalogue = map[VendorID]VendorInfo{
	VendorClaude: {
		ID: VendorClaude, Name: "Claude (Anthropic)",
		DefaultEndpoint: "https://api.anthropic.com/v1", DefaultModel: "claude-sonnet-4-20250514",
		Recommended: true, NeedsCredential: true,
	},
	VendorDeepSeek: {
		ID: VendorDeepSeek, Name: "DeepSeek",
		DefaultEndpoint: "https://api.deepseek.com/v1", DefaultModel: "deepseek-chat",
		Recommended: true, NeedsCredential: true,
	},
	VendorOpenAI: {
		ID: VendorOpenAI, Name: "OpenAI GPT",
		DefaultEndpoint: "https://api.openai.com/v1", DefaultModel: "gpt-4-turbo",
		NeedsCredential: true,
	},
	VendorGemini: {
		ID: VendorGemini, Name: "Google Gemini",
		DefaultEndpoint: "https://generativelanguage.googleapis.com/", DefaultModel: "gemini-pro",
		NeedsCredential: true,
	},
	VendorQwen: {
		ID: VendorQwen, Name: "Qwen (Alibaba DashScope)",
		DefaultEndpoint: "https://dashscope.aliyuncs.com/api/v1", DefaultModel: "qwen-max",
		NeedsCredential: true,
	},
	VendorGLM: {
		ID: VendorGLM, Name: "GLM (Zhipu)",
		DefaultEndpoint: "https://open.bigmodel.cn/api/paas/v4", DefaultModel: "glm-4",
		NeedsCredential: true,
	},
	VendorBedrock: {
		ID: VendorBedrock, Name: "Claude on AWS Bedrock",
		DefaultEndpoint: "us-east-1", DefaultModel: "anthropic.claude-3-5-sonnet-20241022-v2:0",
	},
}

// Vendors lists every supported vendor, recommended ones first.
func Vendors() []VendorInfo {
	out := make([]VendorInfo, 0, len(catalogue))
	for _, info := range catalogue {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Recommended != out[j].Recommended {
			return out[i].Recommended
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Lookup returns the catalogue entry for id.
func Lookup(id VendorID) (VendorInfo, bool) {
	info, ok := catalogue[id]
	return info, ok
}

// New builds the adapter for cfg.VendorID. The config is copied; later
// changes to the caller's value do not affect the adapter.
func New(cfg Config, opts ...Option) (Provider, error) {
	info, ok := catalogue[cfg.VendorID]
	if !ok {
		return nil, &UnsupportedProviderError{VendorID: cfg.VendorID}
	}
	if info.NeedsCredential && cfg.Credential == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, cfg.VendorID)
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = info.DefaultEndpoint
	}
	if cfg.ModelName == "" {
		cfg.ModelName = info.DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if o.logger == nil {
		o.logger = logger.NewLogrusLogger("info")
	}

	var (
		c   completer
		err error
	)
	switch cfg.VendorID {
	case VendorClaude:
		c = newClaudeCompleter(cfg, o.httpClient)
	case VendorOpenAI, VendorDeepSeek, VendorGLM:
		c = newChatCompleter(cfg, o.httpClient)
	case VendorQwen:
		c = newQwenCompleter(cfg, o.httpClient)
	case VendorGemini:
		c, err = newGeminiCompleter(cfg, o.httpClient)
	case VendorBedrock:
		c, err = newBedrockCompleter(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.VendorID, err)
	}

	return &adapter{
		vendor:    cfg.VendorID,
		model:     cfg.ModelName,
		completer: c,
		logger:    o.logger.WithFields(map[string]interface{}{"vendor": string(cfg.VendorID), "model": cfg.ModelName}),
	}, nil
}
