package provider

import (
	"context"
	"fmt"
	"strings"

	"codegen-server/internal/domain"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Gateway вызывает сконфигурированный генерационный бэкенд и нормализует его
// сырой текстовый вывод. Запись генерации не мутирует - это делает вызывающий.
type Gateway struct {
	client Client
	logger *zap.Logger
}

// NewGateway создает новый Gateway поверх клиента бэкенда.
func NewGateway(client Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		client: client,
		logger: logger.Named("ProviderGateway"),
	}
}

// Generate генерирует код по промту пользователя для заданного стека и режима
// вывода. Возвращает нормализованный текст, использование токенов и имя модели.
func (g *Gateway) Generate(ctx context.Context, prompt string, stack domain.Stack, mode domain.OutputMode) (string, Usage, string, error) {
	if g.client == nil {
		return "", Usage{}, "", domain.ErrNoProviderConfigured
	}

	systemPrompt := buildSystemPrompt(stack, mode)

	raw, usage, err := g.client.GenerateCode(ctx, systemPrompt, prompt)
	if err != nil {
		return "", Usage{}, g.client.Model(), err
	}

	normalized := normalizeResponse(raw)
	if strings.TrimSpace(normalized) == "" {
		g.logger.Warn("Backend response empty after normalization", zap.String("model", g.client.Model()))
		return "", Usage{}, g.client.Model(), domain.ErrEmptyResponse
	}

	// Бэкенд может не вернуть usage (некоторые OpenAI-совместимые прокси).
	// В этом случае оцениваем токены через tiktoken.
	if usage.TotalTokens == 0 {
		usage = estimateUsage(g.client.Model(), systemPrompt+prompt, normalized)
	}

	return normalized, usage, g.client.Model(), nil
}

// buildSystemPrompt строит системную инструкцию из стека и режима вывода.
// Preview запрашивает минимальный пример, остальные режимы - полный
// production-вариант.
func buildSystemPrompt(stack domain.Stack, mode domain.OutputMode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert %s developer. Generate complete, runnable source code for the user's request.\n", stack)

	switch stack {
	case domain.StackReact:
		b.WriteString("Target: a React application. Use functional components and hooks.\n")
	case domain.StackVue:
		b.WriteString("Target: a Vue 3 application using the composition API.\n")
	case domain.StackAngular:
		b.WriteString("Target: an Angular application in TypeScript.\n")
	case domain.StackNode:
		b.WriteString("Target: a Node.js server using plain JavaScript.\n")
	case domain.StackPython:
		b.WriteString("Target: a Python web application.\n")
	case domain.StackStaticSite:
		b.WriteString("Target: a static site in a single HTML file with inline CSS and JavaScript.\n")
	case domain.StackReactNative:
		b.WriteString("Target: a React Native mobile application.\n")
	case domain.StackElectron:
		b.WriteString("Target: an Electron desktop application.\n")
	case domain.StackFullstack:
		b.WriteString("Target: a fullstack application with a Node.js backend and a React frontend.\n")
	}

	if mode == domain.OutputModePreview {
		b.WriteString("Produce a minimal, self-contained example that demonstrates the core idea. Keep it short.\n")
	} else {
		b.WriteString("Produce full production-style output: handle errors, include sensible defaults, and keep the code idiomatic.\n")
		if manifest := stack.ManifestFilename(); manifest != "" {
			fmt.Fprintf(&b, "Include a %s dependency manifest.\n", manifest)
		}
	}

	b.WriteString("Respond with the source code only, no explanations.")
	return b.String()
}

// normalizeResponse убирает одиночную обрамляющую markdown-ограду вокруг
// ответа, если она есть. Внутренние ограды не трогаем.
func normalizeResponse(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || !strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		return trimmed
	}

	inner := strings.Join(lines[1:len(lines)-1], "\n")
	// Если внутри остались ограды, ответ содержит несколько блоков - не трогаем.
	if strings.Contains(inner, "```") {
		return trimmed
	}
	return strings.TrimSpace(inner)
}

// estimateUsage оценивает количество токенов через tiktoken, когда бэкенд не
// вернул usage. Для неизвестных моделей используется кодировка cl100k_base.
func estimateUsage(model, promptText, completionText string) Usage {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return Usage{}
		}
	}

	promptTokens := len(tke.Encode(promptText, nil, nil))
	completionTokens := len(tke.Encode(completionText, nil, nil))
	return Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}
