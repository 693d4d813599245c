package clusterprovisioner

import (
	"errors"
	"fmt"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/client/docker"
	k3dprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster/k3d"
	kindprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster/kind"
)

// ErrUnsupportedDistribution is returned when no provisioner backs the
// requested dev distribution.
var ErrUnsupportedDistribution = errors.New("unsupported dev distribution")

const (
	defaultKubeconfigPath = "~/.kube/config"
	defaultWaitTimeout    = 5 * time.Minute
)

// Factory builds provisioners from cluster configurations. Commands resolve
// it through the runtime container so tests can swap in fakes.
type Factory interface {
	Create(cluster *v1alpha1.Cluster) (ClusterProvisioner, error)
}

// DefaultFactory implements Factory against the local Docker engine.
type DefaultFactory struct{}

// Create selects the distribution provisioner for the cluster configuration.
//
//nolint:ireturn // Factory implementations return the provisioner interface
func (DefaultFactory) Create(cluster *v1alpha1.Cluster) (ClusterProvisioner, error) {
	return NewProvisioner(cluster)
}

// NewProvisioner selects the provisioner for the dev distribution in the
// cluster configuration.
func NewProvisioner(cluster *v1alpha1.Cluster) (ClusterProvisioner, error) {
	engine, err := docker.GetDockerClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return NewProvisionerWithEngine(cluster, engine)
}

// NewProvisionerWithEngine is NewProvisioner with an explicit container
// engine client for testing purposes.
func NewProvisionerWithEngine(
	cluster *v1alpha1.Cluster,
	engine docker.Pinger,
) (ClusterProvisioner, error) {
	if cluster == nil {
		return nil, fmt.Errorf("cluster configuration is required: %w", ErrUnsupportedDistribution)
	}

	dev := cluster.Spec.Dev

	kubeconfig := cluster.Spec.Connection.Kubeconfig
	if kubeconfig == "" {
		kubeconfig = defaultKubeconfigPath
	}

	waitTimeout := cluster.Spec.Connection.Timeout.Duration
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}

	switch dev.Distribution {
	case v1alpha1.DevDistributionKind:
		kindConfig, err := kindprovisioner.NewClusterConfig(dev)
		if err != nil {
			return nil, fmt.Errorf("failed to build kind config: %w", err)
		}

		return kindprovisioner.NewKindClusterProvisioner(
			kindConfig,
			kubeconfig,
			waitTimeout,
			engine,
		), nil

	case v1alpha1.DevDistributionK3d:
		simpleCfg, err := k3dprovisioner.NewSimpleConfig(dev)
		if err != nil {
			return nil, fmt.Errorf("failed to build k3d config: %w", err)
		}

		return k3dprovisioner.NewK3dClusterProvisioner(simpleCfg, waitTimeout, engine), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDistribution, dev.Distribution)
	}
}
