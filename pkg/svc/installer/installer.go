package installer

import "context"

// Installer is implemented by each cluster component kroft manages (k3s,
// cert-manager, Rancher, Fleet).
type Installer interface {
	// Install brings the component up and waits until it is serving.
	Install(ctx context.Context) error

	// Uninstall removes the component from the cluster.
	Uninstall(ctx context.Context) error
}
