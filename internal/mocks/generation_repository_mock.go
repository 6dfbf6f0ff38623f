package mocks

import (
	"context"

	"codegen-server/internal/domain"
	"codegen-server/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGenerationRepository is a mock type for the GenerationRepository type
type MockGenerationRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, record
func (_m *MockGenerationRepository) Create(ctx context.Context, record *domain.GenerationRecord) error {
	ret := _m.Called(ctx, record)
	return ret.Error(0)
}

// MarkCompleted provides a mock function with given fields: ctx, record
func (_m *MockGenerationRepository) MarkCompleted(ctx context.Context, record *domain.GenerationRecord) error {
	ret := _m.Called(ctx, record)
	return ret.Error(0)
}

// MarkFailed provides a mock function with given fields: ctx, id, errMsg
func (_m *MockGenerationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	ret := _m.Called(ctx, id, errMsg)
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockGenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationRecord, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.GenerationRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.GenerationRecord)
	}
	return r0, ret.Error(1)
}

// ListByUser provides a mock function with given fields: ctx, userID, page, limit
func (_m *MockGenerationRepository) ListByUser(ctx context.Context, userID uuid.UUID, page int, limit int) ([]*domain.GenerationRecord, int, error) {
	ret := _m.Called(ctx, userID, page, limit)

	var r0 []*domain.GenerationRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*domain.GenerationRecord)
	}
	return r0, ret.Get(1).(int), ret.Error(2)
}

// NewMockGenerationRepository creates a new instance of MockGenerationRepository.
func NewMockGenerationRepository(t interface {
	mock.TestingT
	Helper()
}) *MockGenerationRepository {
	m := &MockGenerationRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.GenerationRepository = (*MockGenerationRepository)(nil)
