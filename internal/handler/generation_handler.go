package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"codegen-server/internal/domain"
	"codegen-server/internal/middleware"
	"codegen-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// GenerationService - интерфейс сервиса генерации, используемый хендлером.
type GenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, prompt string, stack domain.Stack, mode domain.OutputMode) (*domain.GenerationRecord, *domain.ValidationResult, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.GenerationRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*domain.GenerationRecord, int, error)
}

// GenerationHandler обрабатывает HTTP-запросы к API генерации.
type GenerationHandler struct {
	service GenerationService
	logger  *zap.Logger
}

// NewGenerationHandler создает новый GenerationHandler.
func NewGenerationHandler(service GenerationService, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		service: service,
		logger:  logger.Named("GenerationHandler"),
	}
}

// RegisterRoutes регистрирует маршруты API генерации за auth middleware.
func (h *GenerationHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api/generations")
	api.Use(authMiddleware)
	{
		api.POST("", h.createGeneration)
		api.GET("", h.listGenerations)
		api.GET("/:id", h.getGeneration)
	}
}

type createGenerationRequest struct {
	Prompt     string `json:"prompt" binding:"required,min=1,max=2000"`
	Stack      string `json:"stack" binding:"required"`
	OutputMode string `json:"outputMode" binding:"required"`
}

// generationResponse - полная проекция записи с результатом валидации.
// Warnings и securityIssues не блокируют доставку и отдаются клиенту как есть.
type generationResponse struct {
	*domain.GenerationRecord
	Warnings       []string `json:"warnings,omitempty"`
	SecurityIssues []string `json:"securityIssues,omitempty"`
}

type paginationResponse struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type listGenerationsResponse struct {
	Generations []*domain.GenerationRecord `json:"generations"`
	Pagination  paginationResponse         `json:"pagination"`
}

func (h *GenerationHandler) createGeneration(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req createGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body for createGeneration", zap.Stringer("userID", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	stack, err := domain.ParseStack(req.Stack)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported stack: " + req.Stack})
		return
	}
	mode, err := domain.ParseOutputMode(req.OutputMode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported output mode: " + req.OutputMode})
		return
	}

	record, result, err := h.service.Generate(c.Request.Context(), userID, req.Prompt, stack, mode)
	if err != nil {
		var validationErr *service.ValidationFailedError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors":         validationErr.Result.Errors,
				"warnings":       validationErr.Result.Warnings,
				"securityIssues": validationErr.Result.SecurityIssues,
			})
			return
		}
		h.logger.Error("Generation pipeline failed", zap.Stringer("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Code generation failed"})
		return
	}

	resp := generationResponse{GenerationRecord: record}
	if result != nil {
		resp.Warnings = result.Warnings
		resp.SecurityIssues = result.SecurityIssues
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GenerationHandler) listGenerations(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	page := parsePositiveQuery(c, "page", 1)
	limit := parsePositiveQuery(c, "limit", defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	records, total, err := h.service.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.logger.Error("Failed to list generations", zap.Stringer("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list generations"})
		return
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	c.JSON(http.StatusOK, listGenerationsResponse{
		Generations: records,
		Pagination: paginationResponse{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	})
}

func (h *GenerationHandler) getGeneration(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid generation ID"})
		return
	}

	record, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found"})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			h.logger.Error("Failed to get generation", zap.Stringer("userID", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get generation"})
		}
		return
	}
	c.JSON(http.StatusOK, record)
}

// getUserIDFromContext извлекает UserID, положенный auth middleware.
// При отсутствии прерывает запрос с 401.
func getUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

func parsePositiveQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
