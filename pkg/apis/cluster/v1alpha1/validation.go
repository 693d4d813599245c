package v1alpha1

import (
	"fmt"
	"net"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// clusterNameRegex matches DNS-1123 subdomain names: lowercase alphanumeric
// with optional hyphens. Must start with a letter, end with alphanumeric, and
// be at most 63 characters.
var clusterNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// ClusterNameMaxLength is the maximum length for a cluster name.
const ClusterNameMaxLength = 63

// ValidateClusterName validates that a name is DNS-1123 compliant. Cluster
// and node names end up in kubeconfig contexts, hostnames, and Kubernetes
// node objects, all of which require DNS-1123 subdomain names.
func ValidateClusterName(name string) error {
	if name == "" {
		return nil // empty means use the default
	}

	if len(name) > ClusterNameMaxLength {
		return fmt.Errorf(
			"%w: %q exceeds max %d characters (got %d)",
			ErrClusterNameTooLong, name, ClusterNameMaxLength, len(name),
		)
	}

	if !clusterNameRegex.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must be DNS-1123 compliant "+
				"(lowercase letters, numbers, and hyphens; must start with a letter; "+
				"must not end with a hyphen)",
			ErrClusterNameInvalid, name,
		)
	}

	return nil
}

// ValidNodeRoles returns supported node role values.
func ValidNodeRoles() []NodeRole {
	return []NodeRole{RoleMaster, RoleWorker}
}

// ValidK3sChannels returns supported K3s channel values.
func ValidK3sChannels() []K3sChannel {
	return []K3sChannel{K3sChannelStable, K3sChannelLatest, K3sChannelTesting}
}

// ValidDevDistributions returns supported dev distribution values.
func ValidDevDistributions() []DevDistribution {
	return []DevDistribution{DevDistributionKind, DevDistributionK3d}
}

// Validate checks the whole spec for consistency. All problems found are
// returned joined so the user can fix them in one pass.
func (s *Spec) Validate() error {
	errs := s.ValidationErrors()
	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// ValidationErrors returns every validation failure individually so callers
// can report them one by one.
func (s *Spec) ValidationErrors() []error {
	var errs []error

	if err := ValidateClusterName(s.Name); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, s.validateNodes()...)
	errs = append(errs, s.validateK3s()...)
	errs = append(errs, s.validateComponents()...)

	return errs
}

// validateNodes enforces the node topology: at least one node, exactly one
// master, unique names and addresses, parseable IPs.
func (s *Spec) validateNodes() []error {
	if len(s.Nodes) == 0 {
		return []error{ErrNoNodes}
	}

	var errs []error

	masters := 0
	names := make(map[string]bool, len(s.Nodes))
	addresses := make(map[string]bool, len(s.Nodes))

	for i := range s.Nodes {
		node := &s.Nodes[i]

		if node.Name == "" {
			errs = append(errs, fmt.Errorf("%w: node %d", ErrMissingNodeName, i))
		} else {
			if err := ValidateClusterName(node.Name); err != nil {
				errs = append(errs, err)
			}

			if names[node.Name] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNodeName, node.Name))
			}

			names[node.Name] = true
		}

		if net.ParseIP(node.Address) == nil {
			errs = append(errs, fmt.Errorf("%w: %q (node %s)", ErrInvalidNodeAddress, node.Address, node.Name))
		} else {
			if addresses[node.Address] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNodeAddress, node.Address))
			}

			addresses[node.Address] = true
		}

		if !node.Role.IsValid() {
			errs = append(errs, fmt.Errorf("%w: %q (node %s)", ErrInvalidNodeRole, node.Role, node.Name))
		}

		if node.Role == RoleMaster {
			masters++
		}
	}

	switch {
	case masters == 0:
		errs = append(errs, ErrNoMasterNode)
	case masters > 1:
		errs = append(errs, fmt.Errorf("%w: found %d", ErrMultipleMasterNodes, masters))
	}

	return errs
}

// validateK3s checks the channel, and the pinned version when one is set.
// Versions like v1.31.4+k3s1 are semver with a k3s build suffix.
func (s *Spec) validateK3s() []error {
	var errs []error

	if s.K3s.Channel != "" && !s.K3s.Channel.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidK3sChannel, s.K3s.Channel))
	}

	if s.K3s.Version != "" {
		if _, err := semver.NewVersion(s.K3s.Version); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %w", ErrInvalidK3sVersion, s.K3s.Version, err))
		}
	}

	return errs
}

// validateComponents checks the component stanzas against each other.
func (s *Spec) validateComponents() []error {
	var errs []error

	if s.Rancher.Enabled {
		if s.Rancher.Hostname == "" {
			errs = append(errs, ErrRancherHostnameRequired)
		}

		if !s.CertManager.Enabled {
			errs = append(errs, ErrRancherRequiresCertManager)
		}
	}

	if len(s.Fleet.Paths) > 0 && s.Fleet.RepoURL == "" {
		errs = append(errs, ErrFleetRepoURLRequired)
	}

	if !s.Dev.Distribution.IsValid() && s.Dev.Distribution != "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDevDistribution, s.Dev.Distribution))
	}

	return errs
}

// Master returns the master node. Validation guarantees exactly one exists.
func (s *Spec) Master() (*Node, bool) {
	for i := range s.Nodes {
		if s.Nodes[i].Role == RoleMaster {
			return &s.Nodes[i], true
		}
	}

	return nil, false
}

// Workers returns the worker nodes in declaration order.
func (s *Spec) Workers() []Node {
	workers := make([]Node, 0, len(s.Nodes))

	for _, node := range s.Nodes {
		if node.Role == RoleWorker {
			workers = append(workers, node)
		}
	}

	return workers
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	combined := errs[0]
	for _, err := range errs[1:] {
		combined = fmt.Errorf("%w; %w", combined, err)
	}

	return combined
}
