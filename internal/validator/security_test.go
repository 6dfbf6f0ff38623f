package validator

import (
	"context"
	"testing"

	"codegen-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSecuritySeverityRouting(t *testing.T) {
	files := []domain.GeneratedFile{
		{Filename: "a.js", Content: "eval(userInput);\ndocument.write('<b>hi</b>');"},
		{Filename: "b.js", Content: "el.innerHTML = payload;"},
		{Filename: "c.js", Content: "const password = \"hunter2\";\nconst api_key = \"sk-123\";"},
		{Filename: "d.js", Content: "module.exports = { secret: \"t0ps3cret\" };"},
	}

	result := domain.NewValidationResult()
	scanSecurity(files, result)

	// Файлы во входном порядке, паттерны в порядке объявления.
	assert.Equal(t, []string{
		"a.js: use of eval() detected",
		"a.js: use of document.write() detected",
		"c.js: possible hardcoded password",
		"c.js: possible hardcoded API key",
		"d.js: possible hardcoded secret",
	}, result.SecurityIssues)

	// innerHTML - единственный паттерн уровня warning.
	assert.Equal(t, []string{
		"b.js: raw innerHTML assignment, consider textContent or sanitization",
	}, result.Warnings)

	// Находки скана не делают результат невалидным.
	assert.Empty(t, result.Errors)
	assert.True(t, result.IsValid())
}

func TestScanSecurityOneFindingPerFilePerPattern(t *testing.T) {
	files := []domain.GeneratedFile{
		{Filename: "app.js", Content: "eval(a);\neval(b);\neval(c);"},
		{Filename: "util.js", Content: "eval(d);"},
	}

	result := domain.NewValidationResult()
	scanSecurity(files, result)

	require.Len(t, result.SecurityIssues, 2)
	assert.Equal(t, "app.js: use of eval() detected", result.SecurityIssues[0])
	assert.Equal(t, "util.js: use of eval() detected", result.SecurityIssues[1])
}

func TestScanSecurityCaseInsensitive(t *testing.T) {
	files := []domain.GeneratedFile{
		{Filename: "config.js", Content: "const API_KEY = \"abc123\";\nEVAL(code);"},
	}

	result := domain.NewValidationResult()
	scanSecurity(files, result)

	assert.Contains(t, result.SecurityIssues, "config.js: use of eval() detected")
	assert.Contains(t, result.SecurityIssues, "config.js: possible hardcoded API key")
}

func TestScanSecurityCleanFiles(t *testing.T) {
	files := []domain.GeneratedFile{
		{Filename: "clean.js", Content: "const value = compute();\nconsole.log(value);"},
		{Filename: "index.html", Content: "<!DOCTYPE html><html><head></head><body>hi</body></html>"},
	}

	result := domain.NewValidationResult()
	scanSecurity(files, result)

	assert.Empty(t, result.SecurityIssues)
	assert.Empty(t, result.Warnings)
}

func TestValidateAlwaysRunsSecurityScan(t *testing.T) {
	// Скан выполняется даже при проваленных синтаксических проверках.
	v := newTestValidator(&fakeRunner{failures: map[string]string{"broken.js": "SyntaxError"}})
	files := []domain.GeneratedFile{
		{Filename: "package.json", Content: `{"name": "app", "version": "1.0.0"}`},
		{Filename: "broken.js", Content: "eval(input);"},
	}

	result := v.Validate(context.Background(), files, domain.StackNode)

	assert.False(t, result.IsValid())
	assert.Contains(t, result.SecurityIssues, "broken.js: use of eval() detected")
}
