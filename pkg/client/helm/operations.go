package helm

import (
	"context"
	"fmt"
	"time"

	"github.com/kroft-dev/kroft/pkg/client/netretry"
)

const (
	// waitContextSlack keeps the Go context alive past the Helm timeout so
	// Helm's kstatus wait can report its own, more useful, timeout error.
	waitContextSlack = 5 * time.Minute

	// Chart registries rate-limit bursts of installs, so failed pulls are
	// retried with exponential backoff.
	chartRetryAttempts = 5
	chartRetryBaseWait = 3 * time.Second
	chartRetryMaxWait  = 30 * time.Second
)

// RepoConfig identifies the Helm repository a component is installed from.
// DisplayName feeds error messages and progress output.
type RepoConfig struct {
	Name        string
	URL         string
	DisplayName string
}

// ChartConfig carries the per-component chart coordinates and values.
type ChartConfig struct {
	ReleaseName     string
	ChartName       string
	Namespace       string
	Version         string
	RepoURL         string
	CreateNamespace bool
	SkipWait        bool
	SetValues       map[string]string
	SetJSONVals     map[string]string
}

// InstallOrUpgradeChart adds the component repository and installs or
// upgrades its chart with retry on transient registry errors.
func InstallOrUpgradeChart(
	ctx context.Context,
	client Interface,
	repoConfig RepoConfig,
	chartConfig ChartConfig,
	timeout time.Duration,
) error {
	repoEntry := &RepositoryEntry{
		Name: repoConfig.Name,
		URL:  repoConfig.URL,
	}
	if err := client.AddRepository(ctx, repoEntry, timeout); err != nil {
		return fmt.Errorf("failed to add %s repository: %w", repoConfig.DisplayName, err)
	}

	spec := &ChartSpec{
		ReleaseName:     chartConfig.ReleaseName,
		ChartName:       chartConfig.ChartName,
		Namespace:       chartConfig.Namespace,
		Version:         chartConfig.Version,
		RepoURL:         chartConfig.RepoURL,
		CreateNamespace: chartConfig.CreateNamespace,
		Silent:          true,
		UpgradeCRDs:     true,
		Timeout:         timeout,
		Wait:            !chartConfig.SkipWait,
		WaitForJobs:     !chartConfig.SkipWait,
		SetValues:       chartConfig.SetValues,
		SetJSONVals:     chartConfig.SetJSONVals,
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout+waitContextSlack)
	defer cancel()

	return InstallChartWithRetry(timeoutCtx, client, spec, repoConfig.DisplayName)
}

// InstallChartWithRetry attempts to install a chart, retrying on transient
// network errors (429 rate limits, 5xx responses, connection resets).
func InstallChartWithRetry(
	ctx context.Context,
	client Interface,
	spec *ChartSpec,
	displayName string,
) error {
	for attempt := 1; ; attempt++ {
		_, err := client.InstallOrUpgradeChart(ctx, spec)
		if err == nil {
			return nil
		}
		if attempt == chartRetryAttempts || !netretry.IsRetryable(err) {
			return fmt.Errorf("failed to install %s chart: %w", displayName, err)
		}

		if waitErr := netretry.Wait(ctx, attempt, chartRetryBaseWait, chartRetryMaxWait); waitErr != nil {
			return fmt.Errorf("chart install retry cancelled: %w", waitErr)
		}
	}
}
