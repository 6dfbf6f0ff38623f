package provider

import (
	"context"
	"errors"
	"testing"

	"codegen-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	response string
	usage    Usage
	err      error

	lastSystemPrompt string
	lastUserPrompt   string
}

func (c *stubClient) GenerateCode(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	c.lastSystemPrompt = systemPrompt
	c.lastUserPrompt = userPrompt
	return c.response, c.usage, c.err
}

func (c *stubClient) Model() string { return "test-model" }

func TestGenerateStripsWrappingFence(t *testing.T) {
	client := &stubClient{
		response: "```javascript\nconsole.log('hi');\n```",
		usage:    Usage{TotalTokens: 10},
	}
	g := NewGateway(client, zap.NewNop())

	text, usage, model, err := g.Generate(context.Background(), "say hi", domain.StackNode, domain.OutputModeDownload)
	require.NoError(t, err)

	assert.Equal(t, "console.log('hi');", text)
	assert.Equal(t, 10, usage.TotalTokens)
	assert.Equal(t, "test-model", model)
}

func TestGenerateKeepsMultiBlockResponse(t *testing.T) {
	raw := "```js\nconst a = 1;\n```\nsome text\n```js\nconst b = 2;\n```"
	client := &stubClient{response: raw, usage: Usage{TotalTokens: 5}}
	g := NewGateway(client, zap.NewNop())

	text, _, _, err := g.Generate(context.Background(), "two files", domain.StackNode, domain.OutputModeDownload)
	require.NoError(t, err)
	assert.Equal(t, raw, text)
}

func TestGenerateEmptyResponse(t *testing.T) {
	client := &stubClient{response: "   \n  "}
	g := NewGateway(client, zap.NewNop())

	_, _, _, err := g.Generate(context.Background(), "prompt", domain.StackNode, domain.OutputModePreview)
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestGenerateBackendError(t *testing.T) {
	backendErr := errors.New("rate limited")
	client := &stubClient{err: backendErr}
	g := NewGateway(client, zap.NewNop())

	_, _, _, err := g.Generate(context.Background(), "prompt", domain.StackNode, domain.OutputModePreview)
	assert.ErrorIs(t, err, backendErr)
}

func TestGenerateNoClientConfigured(t *testing.T) {
	g := NewGateway(nil, zap.NewNop())

	_, _, _, err := g.Generate(context.Background(), "prompt", domain.StackNode, domain.OutputModePreview)
	assert.ErrorIs(t, err, domain.ErrNoProviderConfigured)
}

func TestBuildSystemPromptModeShape(t *testing.T) {
	preview := buildSystemPrompt(domain.StackReact, domain.OutputModePreview)
	deploy := buildSystemPrompt(domain.StackReact, domain.OutputModeDeploy)

	assert.Contains(t, preview, "minimal")
	assert.Contains(t, deploy, "production")
	assert.NotEqual(t, preview, deploy)
}

func TestNormalizeResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  string
	}{
		{"plain", "const a = 1;", "const a = 1;"},
		{"fenced", "```\nconst a = 1;\n```", "const a = 1;"},
		{"fenced with language", "```go\npackage main\n```", "package main"},
		{"unterminated fence", "```js\nconst a = 1;", "```js\nconst a = 1;"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, normalizeResponse(tc.in))
		})
	}
}
