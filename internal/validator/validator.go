// Package validator выполняет стековые синтаксические проверки и эвристический
// security-скан над материализованной копией сгенерированных файлов.
package validator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codegen-server/internal/domain"

	"go.uber.org/zap"
)

// Validator материализует файлы в изолированную staging-директорию, выполняет
// проверки и гарантированно удаляет директорию на любом пути выхода.
type Validator struct {
	runner       CommandRunner
	nodeBinary   string
	pythonBinary string
	stagingRoot  string // пусто = системный temp
	logger       *zap.Logger
}

// Options - настройки валидатора.
type Options struct {
	Runner       CommandRunner
	NodeBinary   string
	PythonBinary string
	StagingRoot  string
}

// New создает новый Validator.
func New(opts Options, logger *zap.Logger) *Validator {
	if opts.NodeBinary == "" {
		opts.NodeBinary = "node"
	}
	if opts.PythonBinary == "" {
		opts.PythonBinary = "python3"
	}
	return &Validator{
		runner:       opts.Runner,
		nodeBinary:   opts.NodeBinary,
		pythonBinary: opts.PythonBinary,
		stagingRoot:  opts.StagingRoot,
		logger:       logger.Named("Validator"),
	}
}

// Validate проверяет набор файлов для заданного стека. Всегда возвращает
// результат: ошибки отдельных файлов накапливаются, а не прерывают проверку.
// Единственный фатальный сбой самого валидатора - невозможность создать
// staging-директорию; он отражается одной ошибкой в результате.
func (v *Validator) Validate(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) *domain.ValidationResult {
	result := domain.NewValidationResult()

	stagingDir, err := v.materialize(files, result)
	if err != nil {
		result.AddError(fmt.Sprintf("failed to prepare staging area: %v", err))
		return result
	}
	// Гарантированная очистка на каждом пути выхода.
	defer func() {
		if rmErr := os.RemoveAll(stagingDir); rmErr != nil {
			v.logger.Warn("Failed to remove staging dir", zap.String("dir", stagingDir), zap.Error(rmErr))
		}
	}()

	switch {
	case stack.IsJavaScriptFamily():
		v.checkJavaScript(ctx, stagingDir, "", result)
	case stack == domain.StackPython:
		v.checkPython(ctx, stagingDir, result)
	case stack == domain.StackStaticSite:
		checkStaticSite(files, result)
	case stack == domain.StackFullstack:
		v.checkFullstack(ctx, stagingDir, result)
	default:
		// Неизвестный стек - предупреждение, синтаксис считается валидным.
		result.AddWarning(fmt.Sprintf("no syntax checks available for stack %q, skipping", stack))
	}

	// Security-скан выполняется безусловно и не зависит от исхода
	// синтаксических проверок.
	scanSecurity(files, result)

	return result
}

// materialize записывает файлы в уникальную staging-директорию. Уникальность
// имени (время + случайный суффикс) исключает коллизии параллельных проверок
// без блокировок.
func (v *Validator) materialize(files []domain.GeneratedFile, result *domain.ValidationResult) (string, error) {
	root := v.stagingRoot
	if root == "" {
		root = os.TempDir()
	}

	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	stagingDir := filepath.Join(root, fmt.Sprintf("codegen-validate-%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix)))

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", err
	}

	for _, file := range files {
		cleaned := filepath.Clean(file.Filename)
		if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
			result.AddError(fmt.Sprintf("%s: invalid filename, refusing to materialize", file.Filename))
			continue
		}
		target := filepath.Join(stagingDir, cleaned)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			result.AddError(fmt.Sprintf("%s: failed to materialize: %v", file.Filename, err))
			continue
		}
		if err := os.WriteFile(target, []byte(file.Content), 0o644); err != nil {
			result.AddError(fmt.Sprintf("%s: failed to materialize: %v", file.Filename, err))
		}
	}

	return stagingDir, nil
}
