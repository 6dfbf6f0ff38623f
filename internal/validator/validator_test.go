package validator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codegen-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRunner записывает вызовы и возвращает заранее заданный результат
// для путей, в которых встречается подстрока-ключ.
type fakeRunner struct {
	calls    [][]string
	failures map[string]string // подстрока пути -> диагностика
}

func (r *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	call := append([]string{dir, name}, args...)
	r.calls = append(r.calls, call)

	for needle, diag := range r.failures {
		for _, arg := range args {
			if strings.Contains(arg, needle) {
				return []byte(diag), errors.New("exit status 1")
			}
		}
	}
	return nil, nil
}

func newTestValidator(runner CommandRunner) *Validator {
	return New(Options{Runner: runner}, zap.NewNop())
}

func TestValidateJavaScriptProject(t *testing.T) {
	runner := &fakeRunner{}
	v := newTestValidator(runner)

	files := []domain.GeneratedFile{
		{Filename: "package.json", Content: `{"name": "app", "version": "1.0.0"}`},
		{Filename: "index.js", Content: "console.log('ok');"},
	}

	result := v.Validate(context.Background(), files, domain.StackNode)

	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors)
	// node --check вызывается для каждого .js файла.
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--check")
}

func TestValidateMissingManifest(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "index.js", Content: "console.log('ok');"},
	}

	result := v.Validate(context.Background(), files, domain.StackReact)

	assert.False(t, result.IsValid())
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "package.json")
}

func TestValidateManifestMissingFields(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "package.json", Content: `{"name": "app"}`},
	}

	result := v.Validate(context.Background(), files, domain.StackNode)

	assert.False(t, result.IsValid())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `"version"`)
}

func TestValidateSyntaxFailureAccumulates(t *testing.T) {
	runner := &fakeRunner{failures: map[string]string{"broken.js": "SyntaxError: unexpected token"}}
	v := newTestValidator(runner)

	files := []domain.GeneratedFile{
		{Filename: "package.json", Content: `{"name": "app", "version": "1.0.0"}`},
		{Filename: "broken.js", Content: "function ("},
		{Filename: "ok.js", Content: "console.log(1);"},
	}

	result := v.Validate(context.Background(), files, domain.StackNode)

	// Битый файл дает ошибку, но проверка остальных продолжается.
	assert.False(t, result.IsValid())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken.js")
	assert.Contains(t, result.Errors[0], "SyntaxError")
	assert.Len(t, runner.calls, 2)
}

func TestValidatePythonMissingRequirements(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "app.py", Content: "print('hi')"},
	}

	result := v.Validate(context.Background(), files, domain.StackPython)

	// Отсутствие requirements.txt - предупреждение, не ошибка.
	assert.True(t, result.IsValid())
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "requirements.txt")
}

func TestValidateStaticSiteWarningsOnly(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "index.html", Content: "<div>hello</div>"},
		{Filename: "style.css", Content: "body {}"},
	}

	result := v.Validate(context.Background(), files, domain.StackStaticSite)

	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors)
	// doctype, head, body отсутствуют - три предупреждения.
	assert.Len(t, result.Warnings, 3)
}

func TestValidateFullstackRequiresSubtrees(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "frontend/package.json", Content: `{"name": "fe", "version": "1.0.0"}`},
		{Filename: "frontend/App.jsx", Content: "export default () => null;"},
	}

	result := v.Validate(context.Background(), files, domain.StackFullstack)

	assert.False(t, result.IsValid())
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "backend/")
}

func TestValidateRejectsEscapingFilenames(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "../outside.js", Content: "console.log(1);"},
	}

	result := v.Validate(context.Background(), files, domain.StackNode)

	assert.False(t, result.IsValid())
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "invalid filename") {
			found = true
		}
	}
	assert.True(t, found, "expected invalid filename error, got %v", result.Errors)
}

func TestValidateUnknownStackWarns(t *testing.T) {
	v := newTestValidator(&fakeRunner{})

	files := []domain.GeneratedFile{
		{Filename: "main.txt", Content: "hello"},
	}

	result := v.Validate(context.Background(), files, domain.Stack("exotic"))

	assert.True(t, result.IsValid())
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "no syntax checks")
}
