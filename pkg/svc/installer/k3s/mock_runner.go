package k3sinstaller

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	mock.Mock
}

// NewMockRunner creates a MockRunner that registers expectation assertions
// with the test cleanup.
func NewMockRunner(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockRunner {
	m := &MockRunner{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Run mocks running a command on a node.
func (m *MockRunner) Run(ctx context.Context, command string) (string, error) {
	args := m.Called(ctx, command)

	return args.String(0), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// Sudo mocks running a command through sudo on a node.
func (m *MockRunner) Sudo(ctx context.Context, command string) (string, error) {
	args := m.Called(ctx, command)

	return args.String(0), args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

var _ Runner = (*MockRunner)(nil)
