package v1alpha1

import "errors"

// ErrInvalidNodeRole is returned when an invalid node role is specified.
var ErrInvalidNodeRole = errors.New("invalid node role")

// ErrInvalidK3sChannel is returned when an invalid K3s channel is specified.
var ErrInvalidK3sChannel = errors.New("invalid K3s channel")

// ErrInvalidK3sVersion is returned when the pinned K3s version is not valid semver.
var ErrInvalidK3sVersion = errors.New("invalid K3s version")

// ErrInvalidDevDistribution is returned when an invalid dev distribution is specified.
var ErrInvalidDevDistribution = errors.New("invalid dev distribution")

// ErrClusterNameTooLong is returned when the cluster name exceeds the maximum length.
var ErrClusterNameTooLong = errors.New("cluster name is too long")

// ErrClusterNameInvalid is returned when the cluster name is not DNS-1123 compliant.
var ErrClusterNameInvalid = errors.New("cluster name is invalid")

// ErrNoNodes is returned when the configuration declares no nodes.
var ErrNoNodes = errors.New("no nodes configured")

// ErrNoMasterNode is returned when no node has the master role.
var ErrNoMasterNode = errors.New("no master node configured")

// ErrMultipleMasterNodes is returned when more than one node has the master role.
var ErrMultipleMasterNodes = errors.New("multiple master nodes configured")

// ErrDuplicateNodeName is returned when two nodes share a name.
var ErrDuplicateNodeName = errors.New("duplicate node name")

// ErrDuplicateNodeAddress is returned when two nodes share an address.
var ErrDuplicateNodeAddress = errors.New("duplicate node address")

// ErrInvalidNodeAddress is returned when a node address does not parse as an IP.
var ErrInvalidNodeAddress = errors.New("invalid node address")

// ErrMissingNodeName is returned when a node has no name.
var ErrMissingNodeName = errors.New("missing node name")

// ErrRancherHostnameRequired is returned when Rancher is enabled without a hostname.
var ErrRancherHostnameRequired = errors.New("rancher hostname is required")

// ErrRancherRequiresCertManager is returned when Rancher is enabled while cert-manager is disabled.
var ErrRancherRequiresCertManager = errors.New("rancher requires cert-manager")

// ErrFleetRepoURLRequired is returned when Fleet paths are set without a repository URL.
var ErrFleetRepoURLRequired = errors.New("fleet repository URL is required")
