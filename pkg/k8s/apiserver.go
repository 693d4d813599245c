package k8s

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
)

// CheckAPIServerConnectivity performs a single discovery request against the
// API server. Unlike the readiness waits this does not poll, so the status
// command can fail fast when the cluster is unreachable.
func CheckAPIServerConnectivity(clientset kubernetes.Interface) error {
	_, err := clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("API server connectivity check failed: %w", err)
	}

	return nil
}
