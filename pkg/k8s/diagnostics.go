package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// FailingPods returns one line per pod in the namespace that is neither
// Running with every container ready nor Succeeded. The status command
// appends the lines under a stuck component, where on Raspberry Pi clusters
// the usual culprit is an image with no arm64 build. Listing failures yield
// no lines; the deployment probe already reports unreachable namespaces.
func FailingPods(ctx context.Context, clientset kubernetes.Interface, namespace string) []string {
	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil
	}

	var lines []string

	for i := range pods.Items {
		pod := &pods.Items[i]
		if podHealthy(pod) {
			continue
		}

		lines = append(lines, podFailureLine(pod))
	}

	return lines
}

// podHealthy reports whether a pod is Running with all containers ready, or
// Succeeded (a completed Job pod).
func podHealthy(pod *corev1.Pod) bool {
	if pod.Status.Phase == corev1.PodSucceeded {
		return true
	}

	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	for _, container := range pod.Status.ContainerStatuses {
		if !container.Ready {
			return false
		}
	}

	return true
}

// podFailureLine condenses why a pod is unhealthy into a single line.
func podFailureLine(pod *corev1.Pod) string {
	for _, container := range pod.Status.ContainerStatuses {
		waiting := container.State.Waiting
		if waiting != nil && waiting.Reason != "" {
			return fmt.Sprintf("%s: %s for %s", pod.Name, waiting.Reason, container.Image)
		}

		terminated := container.State.Terminated
		if terminated != nil && terminated.ExitCode != 0 {
			return fmt.Sprintf("%s: terminated with exit code %d (%s)",
				pod.Name, terminated.ExitCode, terminated.Reason)
		}
	}

	for _, container := range pod.Status.InitContainerStatuses {
		waiting := container.State.Waiting
		if waiting != nil && waiting.Reason != "" {
			return fmt.Sprintf("%s: init container %s: %s for %s",
				pod.Name, container.Name, waiting.Reason, container.Image)
		}
	}

	if pod.Status.Reason != "" {
		return fmt.Sprintf("%s: %s (%s)", pod.Name, pod.Status.Phase, pod.Status.Reason)
	}

	return fmt.Sprintf("%s: %s", pod.Name, pod.Status.Phase)
}
