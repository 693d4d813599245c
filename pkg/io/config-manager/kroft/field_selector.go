package configmanager

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

// FieldSelector defines a field and its metadata for configuration management.
type FieldSelector[T any] struct {
	Selector     func(*T) any // Function that returns a pointer to the field
	Description  string       // Human-readable description for CLI flags
	DefaultValue any          // Default value for the field
}

// DefaultNameFieldSelector creates a standard field selector for the cluster name.
func DefaultNameFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.Name },
		Description:  "Name of the cluster",
		DefaultValue: v1alpha1.DefaultClusterName,
	}
}

// DefaultContextFieldSelector creates a standard field selector for kubernetes context.
// No default value is set as the context is derived from the cluster name when
// left empty.
func DefaultContextFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:    func(c *v1alpha1.Cluster) any { return &c.Spec.Connection.Context },
		Description: "Kubernetes context of cluster",
	}
}

// DefaultKubeconfigFieldSelector creates a standard field selector for the kubeconfig path.
func DefaultKubeconfigFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.Connection.Kubeconfig },
		Description:  "Path to kubeconfig file",
		DefaultValue: v1alpha1.DefaultKubeconfigPath,
	}
}

// DefaultTimeoutFieldSelector creates a standard field selector for the readiness timeout.
func DefaultTimeoutFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.Connection.Timeout },
		Description:  "Timeout for cluster readiness checks",
		DefaultValue: metav1.Duration{Duration: v1alpha1.DefaultConnectionTimeout},
	}
}

// DefaultSourceDirectoryFieldSelector creates a standard field selector for the workload source directory.
func DefaultSourceDirectoryFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.Workload.SourceDirectory },
		Description:  "Directory containing workloads to deploy",
		DefaultValue: v1alpha1.DefaultSourceDirectory,
	}
}

// DefaultSSHUserFieldSelector creates a standard field selector for the SSH user.
func DefaultSSHUserFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.SSH.User },
		Description:  "SSH user for node access",
		DefaultValue: v1alpha1.DefaultSSHUser,
	}
}

// DefaultSSHPortFieldSelector creates a standard field selector for the SSH port.
func DefaultSSHPortFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.SSH.Port },
		Description:  "SSH port for node access",
		DefaultValue: v1alpha1.DefaultSSHPort,
	}
}

// DefaultSSHIdentityFileFieldSelector creates a standard field selector for the SSH identity file.
func DefaultSSHIdentityFileFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.SSH.IdentityFile },
		Description:  "SSH private key for node access",
		DefaultValue: v1alpha1.DefaultSSHIdentityFile,
	}
}

// DefaultK3sChannelFieldSelector creates a standard field selector for the K3s release channel.
func DefaultK3sChannelFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.K3s.Channel },
		Description:  "K3s release channel to follow",
		DefaultValue: v1alpha1.K3sChannelStable,
	}
}

// DefaultK3sVersionFieldSelector creates a standard field selector for a pinned K3s version.
// No default value is set as the channel resolves the version when left empty.
func DefaultK3sVersionFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:    func(c *v1alpha1.Cluster) any { return &c.Spec.K3s.Version },
		Description: "Exact K3s version to install (overrides the channel)",
	}
}

// DefaultCloudInitDirFieldSelector creates a standard field selector for the cloud-init output directory.
func DefaultCloudInitDirFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.CloudInit.OutputDir },
		Description:  "Directory to write node provisioning artifacts to",
		DefaultValue: v1alpha1.DefaultCloudInitDirectory,
	}
}

// DefaultDevDistributionFieldSelector creates a standard field selector for the dev cluster distribution.
func DefaultDevDistributionFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.Dev.Distribution },
		Description:  "Distribution to run the local dev cluster with",
		DefaultValue: v1alpha1.DevDistributionKind,
	}
}

// DefaultDevNameFieldSelector creates a standard field selector for the dev cluster name.
func DefaultDevNameFieldSelector() FieldSelector[v1alpha1.Cluster] {
	return FieldSelector[v1alpha1.Cluster]{
		Selector:     func(c *v1alpha1.Cluster) any { return &c.Spec.Dev.Name },
		Description:  "Name of the local dev cluster",
		DefaultValue: v1alpha1.DefaultDevClusterName,
	}
}

// DefaultClusterFieldSelectors returns the field selectors shared by commands
// that operate on the physical cluster.
func DefaultClusterFieldSelectors() []FieldSelector[v1alpha1.Cluster] {
	return []FieldSelector[v1alpha1.Cluster]{
		DefaultNameFieldSelector(),
		DefaultContextFieldSelector(),
		DefaultKubeconfigFieldSelector(),
		DefaultTimeoutFieldSelector(),
	}
}

// DefaultNodeFieldSelectors returns the field selectors shared by commands
// that reach nodes over SSH.
func DefaultNodeFieldSelectors() []FieldSelector[v1alpha1.Cluster] {
	return []FieldSelector[v1alpha1.Cluster]{
		DefaultSSHUserFieldSelector(),
		DefaultSSHPortFieldSelector(),
		DefaultSSHIdentityFileFieldSelector(),
	}
}

// DefaultDevFieldSelectors returns the field selectors shared by the dev
// cluster commands.
func DefaultDevFieldSelectors() []FieldSelector[v1alpha1.Cluster] {
	return []FieldSelector[v1alpha1.Cluster]{
		DefaultDevDistributionFieldSelector(),
		DefaultDevNameFieldSelector(),
		DefaultKubeconfigFieldSelector(),
	}
}

// DefaultWorkloadFieldSelectors returns the field selectors shared by the
// workload commands.
func DefaultWorkloadFieldSelectors() []FieldSelector[v1alpha1.Cluster] {
	return []FieldSelector[v1alpha1.Cluster]{
		DefaultSourceDirectoryFieldSelector(),
		DefaultContextFieldSelector(),
		DefaultKubeconfigFieldSelector(),
	}
}
