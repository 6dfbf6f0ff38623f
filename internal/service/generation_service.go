package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codegen-server/internal/domain"
	"codegen-server/internal/messaging"
	"codegen-server/internal/provider"
	"codegen-server/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codegen_generations_total",
			Help: "Total number of finished generation pipelines.",
		},
		[]string{"stack", "output_mode", "outcome"},
	)
	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codegen_generation_duration_seconds",
			Help:    "Histogram of end-to-end durations of completed pipelines.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stack", "output_mode"},
	)
)

// CodeGenerator генерирует сырой текст ответа для заданного промта.
type CodeGenerator interface {
	Generate(ctx context.Context, prompt string, stack domain.Stack, mode domain.OutputMode) (string, provider.Usage, string, error)
}

// ContentParser разбирает сырой текст ответа в структурированный результат.
type ContentParser interface {
	Parse(raw string, stack domain.Stack) domain.GeneratedContent
}

// CodeValidator проверяет сгенерированные файлы.
type CodeValidator interface {
	Validate(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) *domain.ValidationResult
}

// DeliveryDispatcher доставляет файлы согласно режиму вывода.
type DeliveryDispatcher interface {
	Dispatch(ctx context.Context, mode domain.OutputMode, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error)
}

// ValidationFailedError возвращается, когда сгенерированный код не прошел
// проверку. Содержит полный результат валидации для ответа клиенту.
type ValidationFailedError struct {
	Result *domain.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Result.Errors, "; "))
}

// GenerationService управляет полным жизненным циклом записи генерации:
// от создания в pending до ровно одного терминального перехода.
type GenerationService struct {
	repo      repository.GenerationRepository
	generator CodeGenerator
	parser    ContentParser
	validator CodeValidator
	router    DeliveryDispatcher
	publisher messaging.EventPublisher // может быть nil
	logger    *zap.Logger
}

// NewGenerationService создает новый GenerationService. Publisher опционален:
// при nil события жизненного цикла не публикуются.
func NewGenerationService(
	repo repository.GenerationRepository,
	generator CodeGenerator,
	parser ContentParser,
	validator CodeValidator,
	router DeliveryDispatcher,
	publisher messaging.EventPublisher,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		repo:      repo,
		generator: generator,
		parser:    parser,
		validator: validator,
		router:    router,
		publisher: publisher,
		logger:    logger.Named("GenerationService"),
	}
}

// Generate выполняет полный пайплайн: генерация, разбор, валидация, доставка.
// Запись создается в pending до первого внешнего вызова, поэтому любой сбой
// оставляет в БД запись в состоянии failed с текстом ошибки.
//
// Возвращаемый ValidationResult не nil при завершенной валидации: warnings и
// securityIssues не блокируют доставку и отдаются вызывающему как есть.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, prompt string, stack domain.Stack, mode domain.OutputMode) (*domain.GenerationRecord, *domain.ValidationResult, error) {
	now := time.Now().UTC()
	record := &domain.GenerationRecord{
		ID:         uuid.New(),
		UserID:     userID,
		Prompt:     prompt,
		Stack:      stack,
		OutputMode: mode,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to create generation record: %w", err)
	}

	log := s.logger.With(
		zap.String("record_id", record.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("stack", string(stack)),
		zap.String("output_mode", string(mode)),
	)
	log.Info("Generation started")

	record.Status = domain.StatusGenerating
	started := time.Now()

	raw, usage, model, err := s.generator.Generate(ctx, prompt, stack, mode)
	if err != nil {
		s.fail(ctx, record, fmt.Sprintf("generation failed: %v", err))
		return nil, nil, fmt.Errorf("provider generation: %w", err)
	}

	content := s.parser.Parse(raw, stack)
	if len(content.Files) == 0 {
		s.fail(ctx, record, "generation produced no files")
		return nil, nil, fmt.Errorf("parse response: %w", domain.ErrEmptyResponse)
	}

	result := s.validator.Validate(ctx, content.Files, stack)
	if !result.IsValid() {
		s.fail(ctx, record, strings.Join(result.Errors, "; "))
		return nil, result, &ValidationFailedError{Result: result}
	}

	delivery, err := s.router.Dispatch(ctx, mode, content.Files, stack)
	if err != nil {
		s.fail(ctx, record, fmt.Sprintf("delivery failed: %v", err))
		return nil, result, fmt.Errorf("delivery dispatch: %w", err)
	}

	record.Files = content.Files
	record.Documentation = content.Documentation
	record.InstallationScript = content.InstallationScript
	record.PreviewURL = delivery.PreviewURL
	record.DeploymentURL = delivery.DeploymentURL
	record.DownloadURL = delivery.DownloadURL
	record.CommitHash = delivery.CommitHash
	record.Metadata = domain.Metadata{
		TokensUsed:       usage.TotalTokens,
		GenerationTimeMs: time.Since(started).Milliseconds(),
		ModelUsed:        model,
	}

	if err := s.repo.MarkCompleted(ctx, record); err != nil {
		return nil, result, fmt.Errorf("failed to mark generation completed: %w", err)
	}

	generationsTotal.With(prometheus.Labels{
		"stack":       string(stack),
		"output_mode": string(mode),
		"outcome":     string(domain.StatusCompleted),
	}).Inc()
	generationDuration.With(prometheus.Labels{
		"stack":       string(stack),
		"output_mode": string(mode),
	}).Observe(time.Since(started).Seconds())

	log.Info("Generation completed",
		zap.Int("files", len(record.Files)),
		zap.Int("tokens_used", record.Metadata.TokensUsed),
		zap.Int64("generation_time_ms", record.Metadata.GenerationTimeMs),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("security_issues", len(result.SecurityIssues)),
	)
	s.publishEvent(ctx, record)
	return record, result, nil
}

// GetByID возвращает запись по идентификатору. Запись чужого пользователя
// возвращает ErrForbidden, отсутствующая - ErrNotFound.
func (s *GenerationService) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.GenerationRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return record, nil
}

// ListByUser возвращает страницу записей пользователя (без содержимого files)
// и общее количество записей.
func (s *GenerationService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*domain.GenerationRecord, int, error) {
	return s.repo.ListByUser(ctx, userID, page, limit)
}

// fail переводит запись в failed. Повторный терминальный переход невозможен:
// репозиторий игнорирует записи в терминальном состоянии.
func (s *GenerationService) fail(ctx context.Context, record *domain.GenerationRecord, errMsg string) {
	if err := s.repo.MarkFailed(ctx, record.ID, errMsg); err != nil {
		if errors.Is(err, domain.ErrRecordTerminal) {
			s.logger.Warn("Record already terminal, skipping failure transition",
				zap.String("record_id", record.ID.String()))
			return
		}
		s.logger.Error("Failed to mark generation failed",
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
		return
	}
	record.Status = domain.StatusFailed
	record.Error = errMsg
	generationsTotal.With(prometheus.Labels{
		"stack":       string(record.Stack),
		"output_mode": string(record.OutputMode),
		"outcome":     string(domain.StatusFailed),
	}).Inc()
	s.logger.Warn("Generation failed",
		zap.String("record_id", record.ID.String()),
		zap.String("error", errMsg),
	)
	s.publishEvent(ctx, record)
}

// publishEvent публикует событие терминального перехода. Ошибка публикации не
// влияет на результат пайплайна.
func (s *GenerationService) publishEvent(ctx context.Context, record *domain.GenerationRecord) {
	if s.publisher == nil {
		return
	}
	event := messaging.GenerationEvent{
		RecordID:   record.ID,
		UserID:     record.UserID,
		Status:     record.Status,
		Stack:      record.Stack,
		OutputMode: string(record.OutputMode),
		Error:      record.Error,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishGenerationEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish generation event",
			zap.String("record_id", record.ID.String()),
			zap.Error(err),
		)
	}
}
