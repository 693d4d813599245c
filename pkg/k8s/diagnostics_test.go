package k8s_test

import (
	"context"
	"testing"

	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func healthyPod(namespace, name string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "main", Ready: true},
			},
		},
	}
}

func TestFailingPods_AllHealthy(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		healthyPod("cattle-system", "rancher-6f9df6b8c-x2j4q"),
		healthyPod("cattle-system", "rancher-webhook-77f4b8b8f-abcde"),
	)

	lines := k8s.FailingPods(context.Background(), clientset, "cattle-system")

	assert.Empty(t, lines)
}

func TestFailingPods_NoPods(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()

	lines := k8s.FailingPods(context.Background(), clientset, "cattle-system")

	assert.Empty(t, lines)
}

func TestFailingPods_ImagePullBackOff(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "cattle-system", Name: "rancher-6f9df6b8c-x2j4q"},
		Status: corev1.PodStatus{
			Phase: corev1.PodPending,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name:  "rancher",
					Image: "rancher/rancher:v2.11.1",
					State: corev1.ContainerState{
						Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"},
					},
				},
			},
		},
	})

	lines := k8s.FailingPods(context.Background(), clientset, "cattle-system")

	require.Len(t, lines, 1)
	assert.Equal(t, "rancher-6f9df6b8c-x2j4q: ImagePullBackOff for rancher/rancher:v2.11.1", lines[0])
}

func TestFailingPods_CrashedContainer(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "cert-manager", Name: "cert-manager-cainjector-0"},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			ContainerStatuses: []corev1.ContainerStatus{
				{
					Name:  "cainjector",
					Ready: false,
					State: corev1.ContainerState{
						Terminated: &corev1.ContainerStateTerminated{
							ExitCode: 137,
							Reason:   "OOMKilled",
						},
					},
				},
			},
		},
	})

	lines := k8s.FailingPods(context.Background(), clientset, "cert-manager")

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "terminated with exit code 137 (OOMKilled)")
}

func TestFailingPods_InitContainerStuck(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "cattle-system", Name: "rancher-webhook-0"},
		Status: corev1.PodStatus{
			Phase: corev1.PodPending,
			InitContainerStatuses: []corev1.ContainerStatus{
				{
					Name:  "wait-for-ca",
					Image: "rancher/kubectl:v1.33.0",
					State: corev1.ContainerState{
						Waiting: &corev1.ContainerStateWaiting{Reason: "CreateContainerConfigError"},
					},
				},
			},
		},
	})

	lines := k8s.FailingPods(context.Background(), clientset, "cattle-system")

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "init container wait-for-ca: CreateContainerConfigError")
}

func TestFailingPods_FailedPhaseFallback(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "kube-system", Name: "helm-install-traefik-abc"},
		Status: corev1.PodStatus{
			Phase:  corev1.PodFailed,
			Reason: "Evicted",
		},
	})

	lines := k8s.FailingPods(context.Background(), clientset, "kube-system")

	require.Len(t, lines, 1)
	assert.Equal(t, "helm-install-traefik-abc: Failed (Evicted)", lines[0])
}

func TestFailingPods_SucceededJobPodIsHealthy(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: "kube-system", Name: "helm-install-traefik-abc"},
		Status:     corev1.PodStatus{Phase: corev1.PodSucceeded},
	})

	lines := k8s.FailingPods(context.Background(), clientset, "kube-system")

	assert.Empty(t, lines)
}
