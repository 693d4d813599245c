package installer

import (
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

const (
	// DefaultInstallTimeout is the default timeout (5 minutes) for component installation.
	DefaultInstallTimeout = 5 * time.Minute
	// RancherInstallTimeout is the timeout (10 minutes) for Rancher installation.
	// Rancher pulls large images and runs migrations on first start, which is
	// slow on Raspberry Pi storage.
	RancherInstallTimeout = 10 * time.Minute
)

// MaxTimeout returns the larger of the two timeouts.
func MaxTimeout(first, second time.Duration) time.Duration {
	if first > second {
		return first
	}

	return second
}

// GetInstallTimeout determines the timeout for component installation. Uses
// the cluster connection timeout if configured, otherwise DefaultInstallTimeout.
func GetInstallTimeout(clusterCfg *v1alpha1.Cluster) time.Duration {
	if clusterCfg == nil {
		return DefaultInstallTimeout
	}

	if clusterCfg.Spec.Connection.Timeout.Duration > 0 {
		return clusterCfg.Spec.Connection.Timeout.Duration
	}

	return DefaultInstallTimeout
}
