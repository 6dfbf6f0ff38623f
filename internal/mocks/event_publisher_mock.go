package mocks

import (
	"context"

	"codegen-server/internal/messaging"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock type for the EventPublisher type
type MockEventPublisher struct {
	mock.Mock
}

// PublishGenerationEvent provides a mock function with given fields: ctx, event
func (_m *MockEventPublisher) PublishGenerationEvent(ctx context.Context, event messaging.GenerationEvent) error {
	ret := _m.Called(ctx, event)
	return ret.Error(0)
}

// Close provides a mock function
func (_m *MockEventPublisher) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

var _ messaging.EventPublisher = (*MockEventPublisher)(nil)
