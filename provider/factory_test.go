package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
)

func TestNew_EverySupportedVendor(t *testing.T) {
	for _, info := range Vendors() {
		t.Run(string(info.ID), func(t *testing.T) {
			cfg := Config{VendorID: info.ID, Credential: "test-key"}
			if info.ID == VendorBedrock {
				cfg.Credential = "AKIDEXAMPLE:secret"
			}

			p, err := New(cfg, WithLogger(logger.NewTestLogger()))
			require.NoError(t, err)

			var _ Provider = p
			assert.Equal(t, info.ID, p.Vendor())
			assert.Equal(t, info.DefaultModel, p.Model())
		})
	}
}

func TestNew_UnknownVendor(t *testing.T) {
	_, err := New(Config{VendorID: "mistral", Credential: "k"})

	assert.ErrorIs(t, err, ErrUnsupportedProvider)
	var upe *UnsupportedProviderError
	require.True(t, errors.As(err, &upe))
	assert.Equal(t, VendorID("mistral"), upe.VendorID)
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing api key", cfg: Config{VendorID: VendorOpenAI}},
		{name: "malformed bedrock credential", cfg: Config{VendorID: VendorBedrock, Credential: "only-access-key"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrMissingCredential)
		})
	}
}

func TestNew_BedrockUsesDefaultChainWithoutCredential(t *testing.T) {
	p, err := New(Config{VendorID: VendorBedrock, Endpoint: "eu-west-1"}, WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	assert.Equal(t, VendorBedrock, p.Vendor())
}

func TestNew_ModelOverride(t *testing.T) {
	p, err := New(Config{VendorID: VendorDeepSeek, Credential: "k", ModelName: "deepseek-coder"}, WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	assert.Equal(t, "deepseek-coder", p.Model())
}

func TestVendors(t *testing.T) {
	vendors := Vendors()
	require.Len(t, vendors, 7)

	assert.True(t, vendors[0].Recommended)
	assert.True(t, vendors[1].Recommended)
	assert.Equal(t, VendorClaude, vendors[0].ID)
	assert.Equal(t, VendorDeepSeek, vendors[1].ID)
	for _, v := range vendors[2:] {
		assert.False(t, v.Recommended, v.ID)
	}

	info, ok := Lookup(VendorQwen)
	require.True(t, ok)
	assert.Equal(t, "qwen-max", info.DefaultModel)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}
