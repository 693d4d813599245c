package helm

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockInterface is a mock implementation of the Interface for testing.
type MockInterface struct {
	mock.Mock
}

// NewMockInterface creates a MockInterface that registers expectation
// assertions with the test cleanup.
func NewMockInterface(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockInterface {
	m := &MockInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// InstallChart mocks a chart installation.
func (m *MockInterface) InstallChart(
	ctx context.Context,
	spec *ChartSpec,
) (*ReleaseInfo, error) {
	args := m.Called(ctx, spec)

	result, ok := args.Get(0).(*ReleaseInfo)
	if !ok {
		return nil, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
	}

	return result, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// InstallOrUpgradeChart mocks an install-or-upgrade operation.
func (m *MockInterface) InstallOrUpgradeChart(
	ctx context.Context,
	spec *ChartSpec,
) (*ReleaseInfo, error) {
	args := m.Called(ctx, spec)

	result, ok := args.Get(0).(*ReleaseInfo)
	if !ok {
		return nil, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
	}

	return result, args.Error(1) //nolint:wrapcheck // Mock function, wrapping not needed
}

// UninstallRelease mocks a release uninstall.
func (m *MockInterface) UninstallRelease(
	ctx context.Context,
	releaseName, namespace string,
) error {
	args := m.Called(ctx, releaseName, namespace)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

// AddRepository mocks adding a chart repository.
func (m *MockInterface) AddRepository(
	ctx context.Context,
	entry *RepositoryEntry,
	timeout time.Duration,
) error {
	args := m.Called(ctx, entry, timeout)

	return args.Error(0) //nolint:wrapcheck // Mock function, wrapping not needed
}

var _ Interface = (*MockInterface)(nil)
