package delivery

import (
	"context"
	"fmt"
	"time"

	"codegen-server/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PreviewRegistry регистрирует короткоживущие идентификаторы предпросмотра.
type PreviewRegistry interface {
	Register(ctx context.Context, previewID string, ttl time.Duration) error
}

// RedisPreviewRegistry хранит идентификаторы предпросмотра в Redis с TTL:
// идентификатор истекает вместе с эфемерным предпросмотром.
type RedisPreviewRegistry struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPreviewRegistry создает новый RedisPreviewRegistry.
func NewRedisPreviewRegistry(client *redis.Client, logger *zap.Logger) *RedisPreviewRegistry {
	return &RedisPreviewRegistry{
		client: client,
		logger: logger.Named("RedisPreviewRegistry"),
	}
}

// Register записывает идентификатор с заданным TTL.
func (r *RedisPreviewRegistry) Register(ctx context.Context, previewID string, ttl time.Duration) error {
	key := fmt.Sprintf("preview:%s", previewID)
	if err := r.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to register preview id: %w", err)
	}
	return nil
}

// PreviewStrategy выдает URL эфемерного предпросмотра. Само выделение
// sandbox-окружения не реализовано: URL выдается без гарантии живого
// сервиса за ним.
type PreviewStrategy struct {
	baseURL  string
	ttl      time.Duration
	registry PreviewRegistry // может быть nil, регистрация best-effort
	logger   *zap.Logger
}

// NewPreviewStrategy создает новую PreviewStrategy.
func NewPreviewStrategy(baseURL string, ttl time.Duration, registry PreviewRegistry, logger *zap.Logger) *PreviewStrategy {
	return &PreviewStrategy{
		baseURL:  baseURL,
		ttl:      ttl,
		registry: registry,
		logger:   logger.Named("PreviewStrategy"),
	}
}

// Deliver выделяет короткоживущий идентификатор и синтезирует preview URL.
func (s *PreviewStrategy) Deliver(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error) {
	previewID := newArtifactID("preview")

	if s.registry != nil {
		if err := s.registry.Register(ctx, previewID, s.ttl); err != nil {
			// Реестр - вспомогательный механизм; его сбой не отменяет доставку.
			s.logger.Warn("Failed to register preview id", zap.String("preview_id", previewID), zap.Error(err))
		}
	}

	s.logger.Info("Preview allocated",
		zap.String("preview_id", previewID),
		zap.String("stack", string(stack)),
		zap.Int("files", len(files)),
	)

	return domain.DeliveryResult{
		PreviewURL: fmt.Sprintf("%s/%s", s.baseURL, previewID),
		CommitHash: newCommitToken(),
	}, nil
}
