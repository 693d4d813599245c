package readiness_test

import (
	"context"
	"testing"
	"time"

	"github.com/kroft-dev/kroft/pkg/k8s/readiness"
	"github.com/kroft-dev/kroft/pkg/poll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func rolledOutDeployment(namespace, name string, replicas int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Spec:       appsv1.DeploymentSpec{Replicas: &replicas},
		Status: appsv1.DeploymentStatus{
			Replicas:          replicas,
			UpdatedReplicas:   replicas,
			AvailableReplicas: replicas,
		},
	}
}

func TestDeploymentReady(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name       string
		deployment *appsv1.Deployment
		want       bool
	}

	tests := []testCase{
		{
			name:       "ready with explicit replicas",
			deployment: rolledOutDeployment("cattle-system", "rancher", 3),
			want:       true,
		},
		{
			name: "ready with defaulted replicas",
			deployment: &appsv1.Deployment{
				Status: appsv1.DeploymentStatus{
					Replicas:          1,
					UpdatedReplicas:   1,
					AvailableReplicas: 1,
				},
			},
			want: true,
		},
		{
			name: "not ready while rollout in progress",
			deployment: func() *appsv1.Deployment {
				deployment := rolledOutDeployment("cattle-system", "rancher", 3)
				deployment.Status.UpdatedReplicas = 2
				deployment.Status.AvailableReplicas = 2

				return deployment
			}(),
			want: false,
		},
		{
			name:       "not ready with empty status",
			deployment: &appsv1.Deployment{},
			want:       false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, readiness.DeploymentReady(testCase.deployment))
		})
	}
}

func TestWaitForDeploymentReady_RolloutComplete(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(rolledOutDeployment("cattle-system", "rancher", 3))

	err := readiness.WaitForDeploymentReady(
		context.Background(), clientset, "cattle-system", "rancher", 5*time.Second,
	)
	require.NoError(t, err)
}

func TestWaitForDeploymentReady_DeploymentMissing(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()

	err := readiness.WaitForDeploymentReady(
		context.Background(), clientset, "cattle-system", "rancher", 200*time.Millisecond,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, poll.ErrTimeoutExceeded)
}

func TestWaitForDeploymentsReady_AllRolledOut(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		rolledOutDeployment("cert-manager", "cert-manager", 1),
		rolledOutDeployment("cert-manager", "cert-manager-cainjector", 1),
		rolledOutDeployment("cert-manager", "cert-manager-webhook", 1),
	)

	err := readiness.WaitForDeploymentsReady(
		context.Background(),
		clientset,
		"cert-manager",
		[]string{"cert-manager", "cert-manager-cainjector", "cert-manager-webhook"},
		5*time.Second,
	)
	require.NoError(t, err)
}

func TestWaitForDeploymentsReady_OneStillRollingOut(t *testing.T) {
	t.Parallel()

	pending := rolledOutDeployment("cert-manager", "cert-manager-webhook", 1)
	pending.Status.AvailableReplicas = 0

	clientset := fake.NewClientset(
		rolledOutDeployment("cert-manager", "cert-manager", 1),
		pending,
	)

	err := readiness.WaitForDeploymentsReady(
		context.Background(),
		clientset,
		"cert-manager",
		[]string{"cert-manager", "cert-manager-webhook"},
		200*time.Millisecond,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, poll.ErrTimeoutExceeded)
}
