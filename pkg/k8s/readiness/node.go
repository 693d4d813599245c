package readiness

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForNodeReady polls a single node until it reports the Ready condition
// or the timeout elapses.
func WaitForNodeReady(ctx context.Context, clientset kubernetes.Interface, nodeName string, timeout time.Duration) error {
	return PollForReadiness(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		node, err := clientset.CoreV1().Nodes().Get(pollCtx, nodeName, metav1.GetOptions{})
		if err != nil {
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return NodeReady(node), nil
	})
}

// WaitForNodesReady polls the cluster until at least count nodes report the
// Ready condition. The bootstrap flow uses this to wait for every agent that
// joined the control plane.
func WaitForNodesReady(ctx context.Context, clientset kubernetes.Interface, count int, timeout time.Duration) error {
	return PollForReadiness(ctx, timeout, func(pollCtx context.Context) (bool, error) {
		nodes, err := clientset.CoreV1().Nodes().List(pollCtx, metav1.ListOptions{})
		if err != nil {
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		ready := 0

		for i := range nodes.Items {
			if NodeReady(&nodes.Items[i]) {
				ready++
			}
		}

		return ready >= count, nil
	})
}

// NodeReady reports whether the node carries a Ready condition with status
// True.
func NodeReady(node *corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady {
			return condition.Status == corev1.ConditionTrue
		}
	}

	return false
}
