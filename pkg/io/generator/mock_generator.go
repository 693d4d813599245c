package generator

import (
	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock implementation of the Generator interface for testing.
type MockGenerator[T any, Options any] struct {
	mock.Mock
}

// NewMockGenerator creates a new MockGenerator instance bound to the test. Its
// expectations are asserted when the test finishes.
func NewMockGenerator[T any, Options any](t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockGenerator[T, Options] {
	mockGenerator := &MockGenerator[T, Options]{}
	mockGenerator.Mock.Test(t)

	t.Cleanup(func() { mockGenerator.AssertExpectations(t) })

	return mockGenerator
}

// Generate mocks generating a document for the model.
func (m *MockGenerator[T, Options]) Generate(model T, opts Options) (string, error) {
	args := m.Called(model, opts)

	return args.String(0), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}
