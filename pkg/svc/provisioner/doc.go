// Package provisioner provides the local development cluster services.
//
// The cluster subpackage selects and drives a docker-backed Kubernetes
// distribution (kind or k3d) so workloads can be exercised on a laptop
// before they reach the physical cluster.
package provisioner
