// Package delivery направляет провалидированные файлы в одну из трех стратегий
// доставки: эфемерный предпросмотр, постоянный деплой или скачиваемый архив.
package delivery

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"codegen-server/internal/domain"

	"go.uber.org/zap"
)

// Strategy превращает набор файлов в пользовательский артефакт/URL.
type Strategy interface {
	Deliver(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error)
}

// Router выбирает ровно одну стратегию по режиму вывода.
type Router struct {
	preview  Strategy
	deploy   Strategy
	download Strategy
	logger   *zap.Logger
}

// NewRouter создает новый Router. Стратегии передаются явно (DI), что
// позволяет подменять их тестовыми двойниками.
func NewRouter(preview, deploy, download Strategy, logger *zap.Logger) *Router {
	return &Router{
		preview:  preview,
		deploy:   deploy,
		download: download,
		logger:   logger.Named("OutputRouter"),
	}
}

// Dispatch выполняет стратегию, соответствующую режиму вывода.
func (r *Router) Dispatch(ctx context.Context, mode domain.OutputMode, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error) {
	var strategy Strategy
	switch mode {
	case domain.OutputModePreview:
		strategy = r.preview
	case domain.OutputModeDeploy:
		strategy = r.deploy
	case domain.OutputModeDownload:
		strategy = r.download
	default:
		return domain.DeliveryResult{}, fmt.Errorf("%w: unknown output mode %q", domain.ErrInvalidInput, mode)
	}

	result, err := strategy.Deliver(ctx, files, stack)
	if err != nil {
		r.logger.Error("Delivery strategy failed",
			zap.String("mode", string(mode)),
			zap.String("stack", string(stack)),
			zap.Error(err),
		)
		return domain.DeliveryResult{}, err
	}

	r.logger.Info("Delivery completed",
		zap.String("mode", string(mode)),
		zap.String("commit_hash", result.CommitHash),
	)
	return result, nil
}

// newCommitToken генерирует случайный непрозрачный токен в форме commit-хэша.
// Это идентификатор-заглушка, не контентно-адресуемый хэш.
func newCommitToken() string {
	buf := make([]byte, 20)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// newArtifactID генерирует уникальный идентификатор артефакта. Временная
// метка плюс случайный суффикс исключают коллизии параллельных запросов
// без блокировок.
func newArtifactID(prefix string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Unix(), hex.EncodeToString(buf))
}
