package repository

import (
	"context"

	"codegen-server/internal/domain"

	"github.com/google/uuid"
)

// GenerationRepository определяет персистентное хранилище записей генерации.
type GenerationRepository interface {
	// Create сохраняет новую запись в состоянии pending.
	Create(ctx context.Context, record *domain.GenerationRecord) error
	// MarkCompleted переводит запись в completed, сохраняя файлы, артефакты
	// доставки и телеметрию. Запись в терминальном состоянии не изменяется.
	MarkCompleted(ctx context.Context, record *domain.GenerationRecord) error
	// MarkFailed переводит запись в failed с сообщением об ошибке.
	// Запись в терминальном состоянии не изменяется.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	// GetByID возвращает запись по идентификатору или domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationRecord, error)
	// ListByUser возвращает страницу записей пользователя (новые первыми,
	// без содержимого files) и общее количество записей.
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*domain.GenerationRecord, int, error)
}
