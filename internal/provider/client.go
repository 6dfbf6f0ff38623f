package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codegen-server/internal/config"
	"codegen-server/internal/domain"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codegen_ai_requests_total",
			Help: "Total number of requests to the generation backend.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codegen_ai_request_duration_seconds",
			Help:    "Histogram of generation backend request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	aiPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codegen_ai_prompt_tokens",
			Help:    "Histogram of prompt token counts.",
			Buckets: prometheus.LinearBuckets(250, 250, 20),
		},
		[]string{"model"},
	)
	aiCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codegen_ai_completion_tokens",
			Help:    "Histogram of completion token counts.",
			Buckets: prometheus.LinearBuckets(100, 100, 20),
		},
		[]string{"model"},
	)
	aiTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codegen_ai_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(350, 350, 20),
		},
		[]string{"model"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codegen_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of generation requests in USD.",
		},
		[]string{"model"},
	)
)

// Оценочные тарифы за 1М токенов в USD. Реальная цена зависит от бэкенда;
// значения по умолчанию соответствуют gpt-4o-mini.
const (
	pricePerMillionInputTokensUSD  = 0.15
	pricePerMillionOutputTokensUSD = 0.60
)

// calculateCost рассчитывает оценочную стоимость запроса на основе токенов.
func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

// observeTokenUsage записывает токенные метрики и оценочную стоимость запроса.
func observeTokenUsage(model string, usage Usage) {
	if usage.TotalTokens == 0 {
		return
	}
	aiPromptTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.PromptTokens))
	aiCompletionTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.CompletionTokens))
	aiTotalTokens.With(prometheus.Labels{"model": model}).Observe(float64(usage.TotalTokens))
	if cost := calculateCost(usage.PromptTokens, usage.CompletionTokens); cost > 0 {
		aiEstimatedCostUSD.With(prometheus.Labels{"model": model}).Add(cost)
	}
}

// Usage содержит информацию об использовании токенов одной генерации.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client - интерфейс генерационного бэкенда.
type Client interface {
	// GenerateCode генерирует текст на основе системной инструкции и промта
	// пользователя. Возвращает сырой текст ответа и информацию о токенах.
	GenerateCode(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error)
	// Model возвращает имя используемой модели.
	Model() string
}

// --- OpenAI Client Implementation ---

type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) Model() string { return c.model }

func (c *openAIClient) GenerateCode(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	usage := Usage{}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openaigo.ChatMessageRoleUser, Content: userPrompt},
	}

	startTime := time.Now()
	c.logger.Debug("Sending request to OpenAI backend",
		zap.String("model", c.model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_prompt_bytes", len(userPrompt)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("OpenAI backend call failed", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", domain.ErrProviderBackend, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Warn("OpenAI backend returned empty response", zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, domain.ErrEmptyResponse
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		usage.PromptTokens = resp.Usage.PromptTokens
		usage.CompletionTokens = resp.Usage.CompletionTokens
		usage.TotalTokens = resp.Usage.TotalTokens
		observeTokenUsage(c.model, usage)
	}

	c.logger.Debug("OpenAI backend response received",
		zap.Duration("duration", duration),
		zap.Int("response_chars", len(resp.Choices[0].Message.Content)),
		zap.Int("total_tokens", usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, usage, nil
}

// --- Ollama Client Implementation ---

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func (c *ollamaClient) Model() string { return c.model }

func newOllamaClient(cfg *config.Config, logger *zap.Logger) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.AITimeout}

	// api.NewClient требует URL без суффикса /v1
	baseURL := strings.TrimSuffix(cfg.OllamaBaseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/")

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Ollama base URL %q: %w", baseURL, err)
	}

	client := api.NewClient(parsedURL, httpClient)
	logger.Info("Ollama client created",
		zap.String("base_url", baseURL),
		zap.String("model", cfg.OllamaModel),
		zap.Duration("timeout", cfg.AITimeout),
	)

	return &ollamaClient{
		client:  client,
		model:   cfg.OllamaModel,
		timeout: cfg.AITimeout,
		logger:  logger.Named("OllamaClient"),
	}, nil
}

func (c *ollamaClient) GenerateCode(ctx context.Context, systemPrompt, userPrompt string) (string, Usage, error) {
	usage := Usage{}

	messages := []api.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	c.logger.Debug("Sending request to Ollama backend",
		zap.String("model", c.model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_prompt_bytes", len(userPrompt)),
	)

	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r // Сохраняем последний (полный) ответ
		return nil
	})

	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Error("Ollama backend call timed out",
				zap.Duration("timeout", c.timeout), zap.Duration("duration", duration), zap.Error(err))
		} else {
			c.logger.Error("Ollama backend call failed", zap.Duration("duration", duration), zap.Error(err))
		}
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error"}).Inc()
		return "", usage, fmt.Errorf("%w: %v", domain.ErrProviderBackend, err)
	}

	if resp.Message.Content == "" {
		c.logger.Warn("Ollama backend returned empty response", zap.Duration("duration", duration))
		aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "error_empty_response"}).Inc()
		return "", usage, domain.ErrEmptyResponse
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.model, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.model}).Observe(duration.Seconds())

	usage.PromptTokens = resp.PromptEvalCount
	usage.CompletionTokens = resp.EvalCount
	usage.TotalTokens = resp.PromptEvalCount + resp.EvalCount
	observeTokenUsage(c.model, usage)

	return resp.Message.Content, usage, nil
}

// --- Factory Function ---

// NewClient создает клиент первого сконфигурированного бэкенда в фиксированном
// порядке приоритета: OpenAI, затем Ollama. Автоматического переключения на
// вторичный бэкенд в рамках одного запроса нет.
func NewClient(cfg *config.Config, logger *zap.Logger) (Client, error) {
	if cfg.OpenAIAPIKey != "" {
		openaiConfig := openaigo.DefaultConfig(cfg.OpenAIAPIKey)
		openaiConfig.BaseURL = cfg.OpenAIBaseURL
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		client := openaigo.NewClientWithConfig(openaiConfig)
		logger.Info("OpenAI client created",
			zap.String("base_url", cfg.OpenAIBaseURL),
			zap.String("model", cfg.OpenAIModel),
			zap.Duration("timeout", cfg.AITimeout),
		)
		return &openAIClient{
			client: client,
			model:  cfg.OpenAIModel,
			logger: logger.Named("OpenAIClient"),
		}, nil
	}

	if cfg.OllamaBaseURL != "" {
		return newOllamaClient(cfg, logger)
	}

	return nil, domain.ErrNoProviderConfigured
}
