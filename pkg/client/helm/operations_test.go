package helm_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kroft-dev/kroft/pkg/client/helm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Error variables for test cases.
var (
	errRepositoryConnection    = errors.New("failed to connect to repository")
	errChartInstallationFailed = errors.New("chart installation failed")
	errServiceUnavailable      = errors.New("server returned 503 Service Unavailable")
)

func jetstackRepoConfig() helm.RepoConfig {
	return helm.RepoConfig{
		Name:        "jetstack",
		URL:         "https://charts.jetstack.io",
		DisplayName: "cert-manager",
	}
}

func certManagerChartConfig() helm.ChartConfig {
	return helm.ChartConfig{
		ReleaseName:     "cert-manager",
		ChartName:       "cert-manager",
		Namespace:       "cert-manager",
		RepoURL:         "https://charts.jetstack.io",
		CreateNamespace: true,
		SetValues:       map[string]string{"installCRDs": "true"},
	}
}

func TestInstallOrUpgradeChartSuccess(t *testing.T) {
	t.Parallel()

	mockClient := helm.NewMockInterface(t)
	ctx := context.Background()
	timeout := 5 * time.Minute

	mockClient.On(
		"AddRepository",
		mock.Anything,
		mock.MatchedBy(func(entry *helm.RepositoryEntry) bool {
			return entry.Name == "jetstack" && entry.URL == "https://charts.jetstack.io"
		}),
		timeout,
	).Return(nil)

	mockClient.On(
		"InstallOrUpgradeChart",
		mock.Anything,
		mock.MatchedBy(func(spec *helm.ChartSpec) bool {
			return spec.ReleaseName == "cert-manager" &&
				spec.Namespace == "cert-manager" &&
				spec.CreateNamespace &&
				spec.Silent &&
				spec.UpgradeCRDs &&
				spec.Wait &&
				spec.WaitForJobs &&
				spec.SetValues["installCRDs"] == "true"
		}),
	).Return(&helm.ReleaseInfo{Name: "cert-manager"}, nil)

	err := helm.InstallOrUpgradeChart(
		ctx, mockClient, jetstackRepoConfig(), certManagerChartConfig(), timeout,
	)
	require.NoError(t, err)
}

func TestInstallOrUpgradeChartAddRepositoryError(t *testing.T) {
	t.Parallel()

	mockClient := helm.NewMockInterface(t)
	ctx := context.Background()
	timeout := 5 * time.Minute

	mockClient.On("AddRepository", mock.Anything, mock.Anything, timeout).
		Return(fmt.Errorf("repo error: %w", errRepositoryConnection))

	err := helm.InstallOrUpgradeChart(
		ctx, mockClient, jetstackRepoConfig(), certManagerChartConfig(), timeout,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add cert-manager repository")
	assert.Contains(t, err.Error(), "failed to connect to repository")
}

func TestInstallOrUpgradeChartInstallError(t *testing.T) {
	t.Parallel()

	mockClient := helm.NewMockInterface(t)
	ctx := context.Background()
	timeout := 5 * time.Minute

	mockClient.On("AddRepository", mock.Anything, mock.Anything, timeout).Return(nil)

	// A non-retryable error must fail after a single attempt.
	mockClient.On("InstallOrUpgradeChart", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("install error: %w", errChartInstallationFailed)).
		Once()

	err := helm.InstallOrUpgradeChart(
		ctx, mockClient, jetstackRepoConfig(), certManagerChartConfig(), timeout,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install cert-manager chart")
	assert.Contains(t, err.Error(), "chart installation failed")
}

func TestInstallOrUpgradeChartSkipWait(t *testing.T) {
	t.Parallel()

	mockClient := helm.NewMockInterface(t)
	ctx := context.Background()
	timeout := time.Minute

	chartConfig := certManagerChartConfig()
	chartConfig.SkipWait = true

	mockClient.On("AddRepository", mock.Anything, mock.Anything, timeout).Return(nil)

	mockClient.On(
		"InstallOrUpgradeChart",
		mock.Anything,
		mock.MatchedBy(func(spec *helm.ChartSpec) bool {
			return !spec.Wait && !spec.WaitForJobs
		}),
	).Return(&helm.ReleaseInfo{Name: "cert-manager"}, nil)

	err := helm.InstallOrUpgradeChart(ctx, mockClient, jetstackRepoConfig(), chartConfig, timeout)
	require.NoError(t, err)
}

func TestInstallChartWithRetryCancelledContext(t *testing.T) {
	t.Parallel()

	mockClient := helm.NewMockInterface(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Retryable error plus a cancelled context aborts between attempts.
	mockClient.On("InstallOrUpgradeChart", mock.Anything, mock.Anything).
		Return(nil, errServiceUnavailable).
		Once()

	spec := &helm.ChartSpec{ReleaseName: "rancher", ChartName: "rancher"}

	err := helm.InstallChartWithRetry(ctx, mockClient, spec, "rancher")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chart install retry cancelled")
}

func TestRepoConfigFields(t *testing.T) {
	t.Parallel()

	config := helm.RepoConfig{
		Name:        "rancher-latest",
		URL:         "https://releases.rancher.com/server-charts/latest",
		DisplayName: "Rancher",
	}

	require.Equal(t, "rancher-latest", config.Name)
	require.Equal(t, "https://releases.rancher.com/server-charts/latest", config.URL)
	require.Equal(t, "Rancher", config.DisplayName)
}

func TestChartConfigFields(t *testing.T) {
	t.Parallel()

	config := helm.ChartConfig{
		ReleaseName:     "rancher",
		ChartName:       "rancher",
		Namespace:       "cattle-system",
		RepoURL:         "https://releases.rancher.com/server-charts/latest",
		CreateNamespace: true,
		SetValues:       map[string]string{"hostname": "rancher.homelab.local"},
		SetJSONVals:     map[string]string{"replicas": "3"},
	}

	require.Equal(t, "rancher", config.ReleaseName)
	require.Equal(t, "cattle-system", config.Namespace)
	require.True(t, config.CreateNamespace)
	require.Equal(t, map[string]string{"hostname": "rancher.homelab.local"}, config.SetValues)
	require.Equal(t, map[string]string{"replicas": "3"}, config.SetJSONVals)
}
