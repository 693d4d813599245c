package v1alpha1

import "time"

const (
	// DefaultClusterName is the cluster name used when none is configured.
	DefaultClusterName = "homelab"
	// DefaultConfigFileName is the kroft configuration filename.
	DefaultConfigFileName = "kroft.yaml"
	// DefaultKubeconfigPath is the default path to the kubeconfig file.
	DefaultKubeconfigPath = "~/.kube/config"
	// DefaultConnectionTimeout bounds cluster readiness checks.
	DefaultConnectionTimeout = 5 * time.Minute
	// DefaultSourceDirectory is the default directory for Kubernetes manifests.
	DefaultSourceDirectory = "k8s"
	// DefaultCloudInitDirectory is the default output directory for node
	// provisioning artifacts.
	DefaultCloudInitDirectory = "cloud-init"
	// DefaultTimezone is the timezone configured on provisioned nodes.
	DefaultTimezone = "Etc/UTC"
	// DefaultLocale is the locale configured on provisioned nodes.
	DefaultLocale = "en_US.UTF-8"
	// DefaultNetworkInterface is the interface static addressing is applied to.
	DefaultNetworkInterface = "eth0"
	// DefaultCIDRPrefix is the network prefix length for node addresses.
	DefaultCIDRPrefix = 24
	// DefaultSSHUser is the default SSH user for node access.
	DefaultSSHUser = "pi"
	// DefaultSSHPort is the default SSH port for node access.
	DefaultSSHPort = 22
	// DefaultSSHIdentityFile is the default SSH private key for node access.
	DefaultSSHIdentityFile = "~/.ssh/id_ed25519"
	// DefaultAPIServerPort is the port the K3s API server listens on.
	DefaultAPIServerPort = 6443
	// DefaultDevClusterName is the default name for local dev clusters.
	DefaultDevClusterName = "kroft-dev"
	// DefaultFleetBranch is the Git branch Fleet tracks when none is configured.
	DefaultFleetBranch = "main"
	// DefaultFleetNamespace is the namespace Fleet GitRepos are applied to.
	DefaultFleetNamespace = "fleet-default"
	// DefaultRancherReplicas is the Rancher deployment replica count.
	DefaultRancherReplicas = 1
)

// ContextName returns the kubeconfig context name for the configured cluster,
// preferring an explicit Connection.Context over the cluster name.
func (s *Spec) ContextName() string {
	if s.Connection.Context != "" {
		return s.Connection.Context
	}

	if s.Name != "" {
		return s.Name
	}

	return DefaultClusterName
}

// ClusterName returns the configured cluster name or the default.
func (s *Spec) ClusterName() string {
	if s.Name != "" {
		return s.Name
	}

	return DefaultClusterName
}
