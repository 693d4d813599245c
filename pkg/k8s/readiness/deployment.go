package readiness

import (
	"context"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// DeploymentReady reports whether the deployment's observed replicas match
// the desired count. A nil replica spec means one replica, matching the
// apps/v1 default.
func DeploymentReady(deployment *appsv1.Deployment) bool {
	desired := int32(1)
	if deployment.Spec.Replicas != nil {
		desired = *deployment.Spec.Replicas
	}

	return deployment.Status.UpdatedReplicas >= desired &&
		deployment.Status.AvailableReplicas >= desired &&
		deployment.Status.Replicas >= desired
}

// WaitForDeploymentReady polls a deployment until its rollout completes or
// the timeout elapses.
func WaitForDeploymentReady(ctx context.Context, clientset kubernetes.Interface, namespace, name string, timeout time.Duration) error {
	return PollForReadiness(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		deployment, err := clientset.AppsV1().Deployments(namespace).Get(pollCtx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return DeploymentReady(deployment), nil
	})
}

// WaitForDeploymentsReady polls a set of deployments in one namespace until
// every rollout completes. The component installers use this for charts that
// ship several deployments, such as cert-manager.
func WaitForDeploymentsReady(ctx context.Context, clientset kubernetes.Interface, namespace string, names []string, timeout time.Duration) error {
	return PollForReadiness(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		for _, name := range names {
			deployment, err := clientset.AppsV1().Deployments(namespace).Get(pollCtx, name, metav1.GetOptions{})
			if err != nil {
				return false, nil //nolint:nilerr // returning nil to continue polling
			}

			if !DeploymentReady(deployment) {
				return false, nil
			}
		}

		return true, nil
	})
}
