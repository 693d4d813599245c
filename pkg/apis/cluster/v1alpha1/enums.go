package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// EnumValuer is implemented by string-based enum types to provide their valid values.
// The schema generator uses this interface to automatically discover enum constraints.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// --- Node Role Types ---

// NodeRole defines the role of a node in the cluster.
type NodeRole string

const (
	// RoleMaster runs the K3s server and hosts the API server.
	RoleMaster NodeRole = "master"
	// RoleWorker joins the cluster as a K3s agent.
	RoleWorker NodeRole = "worker"
)

// Set for NodeRole (pflag.Value interface).
func (r *NodeRole) Set(value string) error {
	for _, role := range ValidNodeRoles() {
		if strings.EqualFold(value, string(role)) {
			*r = role

			return nil
		}
	}

	return fmt.Errorf("%w: %s (valid options: %s, %s)",
		ErrInvalidNodeRole, value, RoleMaster, RoleWorker)
}

// IsValid checks if the node role value is supported.
func (r *NodeRole) IsValid() bool {
	return slices.Contains(ValidNodeRoles(), *r)
}

// String returns the string representation of the NodeRole.
func (r *NodeRole) String() string {
	return string(*r)
}

// Type returns the type of the NodeRole.
func (r *NodeRole) Type() string {
	return "NodeRole"
}

// ValidValues returns all valid NodeRole values as strings.
func (r *NodeRole) ValidValues() []string {
	return []string{string(RoleMaster), string(RoleWorker)}
}

// --- K3s Channel Types ---

// K3sChannel defines the get.k3s.io release channel.
type K3sChannel string

const (
	// K3sChannelStable tracks the stable channel.
	K3sChannelStable K3sChannel = "stable"
	// K3sChannelLatest tracks the latest channel.
	K3sChannelLatest K3sChannel = "latest"
	// K3sChannelTesting tracks the testing channel.
	K3sChannelTesting K3sChannel = "testing"
)

// Set for K3sChannel (pflag.Value interface).
func (c *K3sChannel) Set(value string) error {
	for _, channel := range ValidK3sChannels() {
		if strings.EqualFold(value, string(channel)) {
			*c = channel

			return nil
		}
	}

	return fmt.Errorf("%w: %s (valid options: %s, %s, %s)",
		ErrInvalidK3sChannel, value, K3sChannelStable, K3sChannelLatest, K3sChannelTesting)
}

// IsValid checks if the channel value is supported.
func (c *K3sChannel) IsValid() bool {
	return slices.Contains(ValidK3sChannels(), *c)
}

// String returns the string representation of the K3sChannel.
func (c *K3sChannel) String() string {
	return string(*c)
}

// Type returns the type of the K3sChannel.
func (c *K3sChannel) Type() string {
	return "K3sChannel"
}

// Default returns the default value for K3sChannel (stable).
func (c *K3sChannel) Default() any {
	return K3sChannelStable
}

// ValidValues returns all valid K3sChannel values as strings.
func (c *K3sChannel) ValidValues() []string {
	return []string{string(K3sChannelStable), string(K3sChannelLatest), string(K3sChannelTesting)}
}

// --- Dev Distribution Types ---

// DevDistribution defines which local cluster tool backs `kroft dev`.
type DevDistribution string

const (
	// DevDistributionKind runs the dev cluster with kind (vanilla Kubernetes
	// in Docker).
	DevDistributionKind DevDistribution = "Kind"
	// DevDistributionK3d runs the dev cluster with k3d (K3s in Docker),
	// matching the distribution the physical cluster runs.
	DevDistributionK3d DevDistribution = "K3d"
)

// Set for DevDistribution (pflag.Value interface).
func (d *DevDistribution) Set(value string) error {
	for _, dist := range ValidDevDistributions() {
		if strings.EqualFold(value, string(dist)) {
			*d = dist

			return nil
		}
	}

	return fmt.Errorf("%w: %s (valid options: %s, %s)",
		ErrInvalidDevDistribution, value, DevDistributionKind, DevDistributionK3d)
}

// IsValid checks if the dev distribution value is supported.
func (d *DevDistribution) IsValid() bool {
	return slices.Contains(ValidDevDistributions(), *d)
}

// String returns the string representation of the DevDistribution.
func (d *DevDistribution) String() string {
	return string(*d)
}

// Type returns the type of the DevDistribution.
func (d *DevDistribution) Type() string {
	return "DevDistribution"
}

// Default returns the default value for DevDistribution (Kind).
func (d *DevDistribution) Default() any {
	return DevDistributionKind
}

// ValidValues returns all valid DevDistribution values as strings.
func (d *DevDistribution) ValidValues() []string {
	return []string{string(DevDistributionKind), string(DevDistributionK3d)}
}

// ContextName returns the kubeconfig context name the tool creates for a
// given dev cluster name:
//   - Kind: kind-<name>
//   - K3d: k3d-<name>
func (d *DevDistribution) ContextName(clusterName string) string {
	if clusterName == "" {
		return ""
	}

	switch *d {
	case DevDistributionKind:
		return "kind-" + clusterName
	case DevDistributionK3d:
		return "k3d-" + clusterName
	default:
		return ""
	}
}
