// Package certmanagerinstaller installs or upgrades cert-manager.
//
// Rancher requires cert-manager for its webhook and serving certificates, so
// this runs before the Rancher installer during bootstrap.
package certmanagerinstaller

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kroft-dev/kroft/pkg/client/helm"
	"github.com/kroft-dev/kroft/pkg/k8s/readiness"
	"k8s.io/client-go/kubernetes"
)

const (
	certManagerRepoName  = "jetstack"
	certManagerRepoURL   = "https://charts.jetstack.io"
	certManagerRelease   = "cert-manager"
	certManagerChartName = "jetstack/cert-manager"

	// Namespace is the namespace the chart installs into.
	Namespace = "cert-manager"
)

// certManagerDeployments are the rollouts the chart ships. Install waits on
// all three: the webhook is the one Rancher's install actually blocks on.
//
//nolint:gochecknoglobals // package-level deployment list
var certManagerDeployments = []string{
	"cert-manager",
	"cert-manager-cainjector",
	"cert-manager-webhook",
}

// Deployments returns the chart's deployments. The status command probes
// their rollout state.
func Deployments() []string {
	return slices.Clone(certManagerDeployments)
}

// CertManagerInstaller installs or upgrades cert-manager.
//
// It implements installer.Installer semantics (Install/Uninstall) so it can
// be orchestrated by cluster lifecycle flows.
type CertManagerInstaller struct {
	client    helm.Interface
	clientset kubernetes.Interface
	version   string
	timeout   time.Duration
}

// NewCertManagerInstaller creates a new cert-manager installer instance. An
// empty version installs the latest chart.
func NewCertManagerInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	version string,
	timeout time.Duration,
) *CertManagerInstaller {
	return &CertManagerInstaller{
		client:    client,
		clientset: clientset,
		version:   version,
		timeout:   timeout,
	}
}

// Install installs or upgrades cert-manager via its Helm chart and waits for
// its three deployments to roll out.
func (c *CertManagerInstaller) Install(ctx context.Context) error {
	err := helm.InstallOrUpgradeChart(ctx, c.client, c.repoConfig(), c.chartConfig(), c.timeout)
	if err != nil {
		return fmt.Errorf("install cert-manager: %w", err)
	}

	err = readiness.WaitForDeploymentsReady(
		ctx, c.clientset, Namespace, certManagerDeployments, c.timeout,
	)
	if err != nil {
		return fmt.Errorf("wait for cert-manager components: %w", err)
	}

	return nil
}

// Uninstall removes the Helm release for cert-manager.
func (c *CertManagerInstaller) Uninstall(ctx context.Context) error {
	err := c.client.UninstallRelease(ctx, certManagerRelease, Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall cert-manager release: %w", err)
	}

	return nil
}

func (c *CertManagerInstaller) repoConfig() helm.RepoConfig {
	return helm.RepoConfig{
		Name:        certManagerRepoName,
		URL:         certManagerRepoURL,
		DisplayName: "cert-manager",
	}
}

func (c *CertManagerInstaller) chartConfig() helm.ChartConfig {
	return helm.ChartConfig{
		ReleaseName:     certManagerRelease,
		ChartName:       certManagerChartName,
		Namespace:       Namespace,
		Version:         c.version,
		RepoURL:         certManagerRepoURL,
		CreateNamespace: true,
		SetValues: map[string]string{
			"installCRDs":             "true",
			"startupapicheck.timeout": "5m",
		},
	}
}
