// Package kindprovisioner manages kind development clusters through the kind
// Go provider API.
package kindprovisioner

import (
	"context"
	"fmt"
	"slices"
	"time"

	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"

	"github.com/kroft-dev/kroft/pkg/client/docker"
	"github.com/kroft-dev/kroft/pkg/fsutil"
	clustererrors "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster/errors"
)

// KindProvider describes the subset of kind's cluster Provider used here.
type KindProvider interface {
	Create(name string, opts ...cluster.CreateOption) error
	Delete(name, kubeconfigPath string) error
	List() ([]string, error)
}

// KindClusterProvisioner provisions kind clusters.
type KindClusterProvisioner struct {
	config      *v1alpha4.Cluster
	kubeconfig  string
	waitTimeout time.Duration
	provider    KindProvider
	engine      docker.Pinger
}

// NewKindClusterProvisioner constructs a provisioner backed by the real kind
// provider.
func NewKindClusterProvisioner(
	config *v1alpha4.Cluster,
	kubeconfig string,
	waitTimeout time.Duration,
	engine docker.Pinger,
) *KindClusterProvisioner {
	return NewKindClusterProvisionerWithProvider(
		config,
		kubeconfig,
		waitTimeout,
		engine,
		newLibProvider(),
	)
}

// NewKindClusterProvisionerWithProvider constructs a provisioner with an
// explicit kind provider for testing purposes.
func NewKindClusterProvisionerWithProvider(
	config *v1alpha4.Cluster,
	kubeconfig string,
	waitTimeout time.Duration,
	engine docker.Pinger,
	provider KindProvider,
) *KindClusterProvisioner {
	return &KindClusterProvisioner{
		config:      config,
		kubeconfig:  kubeconfig,
		waitTimeout: waitTimeout,
		provider:    provider,
		engine:      engine,
	}
}

// Create creates a kind cluster and waits for its control plane to be ready.
func (k *KindClusterProvisioner) Create(ctx context.Context, name string) error {
	err := docker.EnsureEngineReady(ctx, k.engine)
	if err != nil {
		return err
	}

	target := setName(name, k.config.Name)
	// The name argument wins over the config so both describe the same cluster.
	k.config.Name = target

	kubeconfigPath, err := fsutil.ExpandHomePath(k.kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to expand kubeconfig path: %w", err)
	}

	err = k.provider.Create(
		target,
		cluster.CreateWithV1Alpha4Config(k.config),
		cluster.CreateWithWaitForReady(k.waitTimeout),
		cluster.CreateWithKubeconfigPath(kubeconfigPath),
		cluster.CreateWithDisplayUsage(false),
		cluster.CreateWithDisplaySalutation(false),
	)
	if err != nil {
		return fmt.Errorf("failed to create kind cluster: %w", err)
	}

	return nil
}

// Delete deletes a kind cluster and drops its context from the kubeconfig.
// Returns clustererrors.ErrClusterNotFound if the cluster does not exist.
func (k *KindClusterProvisioner) Delete(ctx context.Context, name string) error {
	target := setName(name, k.config.Name)

	exists, err := k.Exists(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to check cluster existence: %w", err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", clustererrors.ErrClusterNotFound, target)
	}

	kubeconfigPath, err := fsutil.ExpandHomePath(k.kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to expand kubeconfig path: %w", err)
	}

	err = k.provider.Delete(target, kubeconfigPath)
	if err != nil {
		return fmt.Errorf("failed to delete kind cluster: %w", err)
	}

	return nil
}

// List returns all kind clusters known to the local engine.
func (k *KindClusterProvisioner) List(ctx context.Context) ([]string, error) {
	err := docker.EnsureEngineReady(ctx, k.engine)
	if err != nil {
		return nil, err
	}

	clusters, err := k.provider.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list kind clusters: %w", err)
	}

	return clusters, nil
}

// Exists checks whether a kind cluster with the given name exists.
func (k *KindClusterProvisioner) Exists(ctx context.Context, name string) (bool, error) {
	clusters, err := k.List(ctx)
	if err != nil {
		return false, err
	}

	return slices.Contains(clusters, setName(name, k.config.Name)), nil
}

func setName(name string, configName string) string {
	if name == "" {
		return configName
	}

	return name
}
