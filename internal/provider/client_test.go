package provider

import (
	"testing"

	"codegen-server/internal/config"
	"codegen-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCalculateCost(t *testing.T) {
	// 1М входных + 1М выходных токенов по тарифам по умолчанию.
	assert.InDelta(t, pricePerMillionInputTokensUSD+pricePerMillionOutputTokensUSD, calculateCost(1_000_000, 1_000_000), 1e-9)
	assert.InDelta(t, 0.0, calculateCost(0, 0), 1e-9)

	// Стоимость выходных токенов выше входных.
	assert.Greater(t, calculateCost(0, 1000), calculateCost(1000, 0))
}

func TestNewClientPrefersOpenAI(t *testing.T) {
	cfg := &config.Config{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   "gpt-4o-mini",
		OllamaBaseURL: "http://localhost:11434",
		OllamaModel:   "codellama",
	}

	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", client.Model())
}

func TestNewClientFallsBackToOllama(t *testing.T) {
	cfg := &config.Config{
		OllamaBaseURL: "http://localhost:11434/v1",
		OllamaModel:   "codellama",
	}

	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "codellama", client.Model())
}

func TestNewClientNoBackendConfigured(t *testing.T) {
	client, err := NewClient(&config.Config{}, zap.NewNop())
	assert.Nil(t, client)
	assert.ErrorIs(t, err, domain.ErrNoProviderConfigured)
}
