package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codegen-server/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	insertRecordQuery = `
		INSERT INTO generation_records (
			id, user_id, prompt, stack, output_mode, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	markCompletedQuery = `
		UPDATE generation_records SET
			status = 'completed',
			files = $2,
			documentation = $3,
			installation_script = $4,
			preview_url = $5,
			deployment_url = $6,
			download_url = $7,
			commit_hash = $8,
			tokens_used = $9,
			generation_time_ms = $10,
			model_used = $11,
			updated_at = $12
		WHERE id = $1 AND status NOT IN ('completed', 'failed')
	`
	markFailedQuery = `
		UPDATE generation_records SET
			status = 'failed',
			error = $2,
			updated_at = $3
		WHERE id = $1 AND status NOT IN ('completed', 'failed')
	`
	getRecordQuery = `
		SELECT id, user_id, prompt, stack, output_mode, status, files,
			documentation, installation_script, preview_url, deployment_url,
			download_url, commit_hash, error, tokens_used, generation_time_ms,
			model_used, created_at, updated_at
		FROM generation_records
		WHERE id = $1
	`
	// Листинг не включает содержимое files, чтобы ограничить размер ответа.
	listRecordsQuery = `
		SELECT id, user_id, prompt, stack, output_mode, status, NULL AS files,
			documentation, installation_script, preview_url, deployment_url,
			download_url, commit_hash, error, tokens_used, generation_time_ms,
			model_used, created_at, updated_at
		FROM generation_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	countRecordsQuery = `SELECT COUNT(*) FROM generation_records WHERE user_id = $1`
)

// generationRow - проекция строки generation_records для scany.
type generationRow struct {
	ID                 uuid.UUID `db:"id"`
	UserID             uuid.UUID `db:"user_id"`
	Prompt             string    `db:"prompt"`
	Stack              string    `db:"stack"`
	OutputMode         string    `db:"output_mode"`
	Status             string    `db:"status"`
	Files              []byte    `db:"files"`
	Documentation      string    `db:"documentation"`
	InstallationScript string    `db:"installation_script"`
	PreviewURL         string    `db:"preview_url"`
	DeploymentURL      string    `db:"deployment_url"`
	DownloadURL        string    `db:"download_url"`
	CommitHash         string    `db:"commit_hash"`
	Error              string    `db:"error"`
	TokensUsed         int       `db:"tokens_used"`
	GenerationTimeMs   int64     `db:"generation_time_ms"`
	ModelUsed          string    `db:"model_used"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// PgGenerationRepository - PostgreSQL-реализация GenerationRepository.
type PgGenerationRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgGenerationRepository создает новый PgGenerationRepository.
func NewPgGenerationRepository(pool *pgxpool.Pool, logger *zap.Logger) GenerationRepository {
	return &PgGenerationRepository{
		pool:   pool,
		logger: logger.Named("PgGenerationRepo"),
	}
}

// Create сохраняет новую запись в состоянии pending.
func (r *PgGenerationRepository) Create(ctx context.Context, record *domain.GenerationRecord) error {
	_, err := r.pool.Exec(ctx, insertRecordQuery,
		record.ID,
		record.UserID,
		record.Prompt,
		record.Stack,
		record.OutputMode,
		record.Status,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create GenerationRecord",
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("error creating generation record: %w", err)
	}
	r.logger.Debug("GenerationRecord created", zap.String("record_id", record.ID.String()))
	return nil
}

// MarkCompleted переводит запись в completed и сохраняет результат доставки.
func (r *PgGenerationRepository) MarkCompleted(ctx context.Context, record *domain.GenerationRecord) error {
	filesJSON, err := json.Marshal(record.Files)
	if err != nil {
		return fmt.Errorf("error marshalling generated files: %w", err)
	}

	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx, markCompletedQuery,
		record.ID,
		filesJSON,
		record.Documentation,
		record.InstallationScript,
		record.PreviewURL,
		record.DeploymentURL,
		record.DownloadURL,
		record.CommitHash,
		record.Metadata.TokensUsed,
		record.Metadata.GenerationTimeMs,
		record.Metadata.ModelUsed,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to mark GenerationRecord completed",
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("error marking generation record completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordTerminal
	}
	record.Status = domain.StatusCompleted
	record.UpdatedAt = now
	return nil
}

// MarkFailed переводит запись в failed с сообщением об ошибке.
func (r *PgGenerationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	tag, err := r.pool.Exec(ctx, markFailedQuery, id, errMsg, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark GenerationRecord failed",
			zap.String("record_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("error marking generation record failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecordTerminal
	}
	return nil
}

// GetByID возвращает запись по идентификатору.
func (r *PgGenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationRecord, error) {
	var row generationRow
	if err := pgxscan.Get(ctx, r.pool, &row, getRecordQuery, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to get GenerationRecord", zap.String("record_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("error getting generation record: %w", err)
	}
	return rowToRecord(&row)
}

// ListByUser возвращает страницу записей пользователя и общее количество.
func (r *PgGenerationRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*domain.GenerationRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	var rows []*generationRow
	if err := pgxscan.Select(ctx, r.pool, &rows, listRecordsQuery, userID, limit, offset); err != nil {
		r.logger.Error("Failed to list GenerationRecords", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, 0, fmt.Errorf("error listing generation records: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countRecordsQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting generation records: %w", err)
	}

	records := make([]*domain.GenerationRecord, 0, len(rows))
	for _, row := range rows {
		record, err := rowToRecord(row)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, nil
}

// rowToRecord преобразует строку БД в доменную запись.
func rowToRecord(row *generationRow) (*domain.GenerationRecord, error) {
	record := &domain.GenerationRecord{
		ID:                 row.ID,
		UserID:             row.UserID,
		Prompt:             row.Prompt,
		Stack:              domain.Stack(row.Stack),
		OutputMode:         domain.OutputMode(row.OutputMode),
		Status:             domain.Status(row.Status),
		Documentation:      row.Documentation,
		InstallationScript: row.InstallationScript,
		PreviewURL:         row.PreviewURL,
		DeploymentURL:      row.DeploymentURL,
		DownloadURL:        row.DownloadURL,
		CommitHash:         row.CommitHash,
		Error:              row.Error,
		Metadata: domain.Metadata{
			TokensUsed:       row.TokensUsed,
			GenerationTimeMs: row.GenerationTimeMs,
			ModelUsed:        row.ModelUsed,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if len(row.Files) > 0 {
		if err := json.Unmarshal(row.Files, &record.Files); err != nil {
			return nil, fmt.Errorf("error unmarshalling generated files: %w", err)
		}
	}
	return record, nil
}
