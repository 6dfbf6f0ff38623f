package mocks

import (
	"context"

	"codegen-server/internal/domain"
	"codegen-server/internal/provider"
	"codegen-server/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockCodeGenerator is a mock type for the CodeGenerator type
type MockCodeGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, prompt, stack, mode
func (_m *MockCodeGenerator) Generate(ctx context.Context, prompt string, stack domain.Stack, mode domain.OutputMode) (string, provider.Usage, string, error) {
	ret := _m.Called(ctx, prompt, stack, mode)
	return ret.Get(0).(string), ret.Get(1).(provider.Usage), ret.Get(2).(string), ret.Error(3)
}

var _ service.CodeGenerator = (*MockCodeGenerator)(nil)

// MockContentParser is a mock type for the ContentParser type
type MockContentParser struct {
	mock.Mock
}

// Parse provides a mock function with given fields: raw, stack
func (_m *MockContentParser) Parse(raw string, stack domain.Stack) domain.GeneratedContent {
	ret := _m.Called(raw, stack)
	return ret.Get(0).(domain.GeneratedContent)
}

var _ service.ContentParser = (*MockContentParser)(nil)

// MockCodeValidator is a mock type for the CodeValidator type
type MockCodeValidator struct {
	mock.Mock
}

// Validate provides a mock function with given fields: ctx, files, stack
func (_m *MockCodeValidator) Validate(ctx context.Context, files []domain.GeneratedFile, stack domain.Stack) *domain.ValidationResult {
	ret := _m.Called(ctx, files, stack)
	return ret.Get(0).(*domain.ValidationResult)
}

var _ service.CodeValidator = (*MockCodeValidator)(nil)

// MockDeliveryDispatcher is a mock type for the DeliveryDispatcher type
type MockDeliveryDispatcher struct {
	mock.Mock
}

// Dispatch provides a mock function with given fields: ctx, mode, files, stack
func (_m *MockDeliveryDispatcher) Dispatch(ctx context.Context, mode domain.OutputMode, files []domain.GeneratedFile, stack domain.Stack) (domain.DeliveryResult, error) {
	ret := _m.Called(ctx, mode, files, stack)
	return ret.Get(0).(domain.DeliveryResult), ret.Error(1)
}

var _ service.DeliveryDispatcher = (*MockDeliveryDispatcher)(nil)
