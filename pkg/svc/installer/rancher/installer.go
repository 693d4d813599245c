// Package rancherinstaller installs or upgrades Rancher from the
// rancher-latest Helm chart.
//
// Rancher's chart provisions its TLS through cert-manager issuers, so the
// bootstrap flow runs the cert-manager installer first.
package rancherinstaller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/client/helm"
	"github.com/kroft-dev/kroft/pkg/k8s/readiness"
	"k8s.io/client-go/kubernetes"
)

const (
	rancherRepoName    = "rancher-latest"
	rancherRepoURL     = "https://releases.rancher.com/server-charts/latest"
	rancherReleaseName = "rancher"
	rancherChartName   = "rancher-latest/rancher"

	// Namespace is the namespace the chart installs into.
	Namespace = "cattle-system"
	// DeploymentName is the deployment the chart rolls out. The status
	// command probes its rollout state.
	DeploymentName = rancherReleaseName
)

// ErrHostnameRequired is returned when no Rancher hostname is configured. The
// chart refuses to render without one.
var ErrHostnameRequired = errors.New("rancher hostname is required")

// RancherInstaller installs or upgrades Rancher.
type RancherInstaller struct {
	client            helm.Interface
	clientset         kubernetes.Interface
	config            v1alpha1.Rancher
	bootstrapPassword string
	timeout           time.Duration
}

// NewRancherInstaller creates a new Rancher installer instance. The bootstrap
// password arrives already resolved, see ResolveBootstrapPassword.
func NewRancherInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	config v1alpha1.Rancher,
	bootstrapPassword string,
	timeout time.Duration,
) *RancherInstaller {
	return &RancherInstaller{
		client:            client,
		clientset:         clientset,
		config:            config,
		bootstrapPassword: bootstrapPassword,
		timeout:           timeout,
	}
}

// Install installs or upgrades Rancher via its Helm chart and waits for the
// rancher deployment to roll out.
func (r *RancherInstaller) Install(ctx context.Context) error {
	if r.config.Hostname == "" {
		return ErrHostnameRequired
	}

	err := helm.InstallOrUpgradeChart(ctx, r.client, r.repoConfig(), r.chartConfig(), r.timeout)
	if err != nil {
		return fmt.Errorf("install rancher: %w", err)
	}

	err = readiness.WaitForDeploymentsReady(
		ctx, r.clientset, Namespace, []string{rancherReleaseName}, r.timeout,
	)
	if err != nil {
		return fmt.Errorf("wait for rancher components: %w", err)
	}

	return nil
}

// Uninstall removes the Helm release for Rancher.
func (r *RancherInstaller) Uninstall(ctx context.Context) error {
	err := r.client.UninstallRelease(ctx, rancherReleaseName, Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall rancher release: %w", err)
	}

	return nil
}

func (r *RancherInstaller) repoConfig() helm.RepoConfig {
	return helm.RepoConfig{
		Name:        rancherRepoName,
		URL:         rancherRepoURL,
		DisplayName: "rancher",
	}
}

func (r *RancherInstaller) chartConfig() helm.ChartConfig {
	replicas := r.config.Replicas
	if replicas < 1 {
		replicas = 1
	}

	setValues := map[string]string{
		"hostname": r.config.Hostname,
		"replicas": strconv.Itoa(replicas),
	}

	// When no password is supplied Rancher generates a random one,
	// retrievable from the bootstrap-secret after install.
	if r.bootstrapPassword != "" {
		setValues["bootstrapPassword"] = r.bootstrapPassword
	}

	return helm.ChartConfig{
		ReleaseName:     rancherReleaseName,
		ChartName:       rancherChartName,
		Namespace:       Namespace,
		Version:         r.config.Version,
		RepoURL:         rancherRepoURL,
		CreateNamespace: true,
		SetValues:       setValues,
	}
}
