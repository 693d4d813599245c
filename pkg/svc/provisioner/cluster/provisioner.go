// Package clusterprovisioner manages local development clusters.
//
// A ClusterProvisioner wraps one docker-backed distribution. The factory in
// this package picks the implementation that matches the dev distribution in
// the cluster configuration.
package clusterprovisioner

import "context"

// ClusterProvisioner manages the lifecycle of a local development cluster.
type ClusterProvisioner interface {
	// Create provisions a cluster with the given name. An empty name falls
	// back to the name in the distribution configuration.
	Create(ctx context.Context, name string) error

	// Delete removes a cluster. Returns clustererrors.ErrClusterNotFound
	// when no cluster with the given name exists.
	Delete(ctx context.Context, name string) error

	// List returns the names of all clusters the backing tool knows about.
	List(ctx context.Context) ([]string, error)

	// Exists reports whether a cluster with the given name is present.
	Exists(ctx context.Context, name string) (bool, error)
}
