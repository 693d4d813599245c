package rancherinstaller_test

import (
	"context"
	"testing"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/client/helm"
	rancherinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/rancher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func rancherConfig() v1alpha1.Rancher {
	return v1alpha1.Rancher{
		Enabled:  true,
		Hostname: "rancher.homelab.local",
		Replicas: 3,
	}
}

func rolledOutClientset() *fake.Clientset {
	return fake.NewClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: "cattle-system", Name: "rancher"},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	})
}

func newInstallerWithDefaults(
	t *testing.T,
) (*rancherinstaller.RancherInstaller, *helm.MockInterface) {
	t.Helper()

	client := helm.NewMockInterface(t)
	installer := rancherinstaller.NewRancherInstaller(
		client, rolledOutClientset(), rancherConfig(), "super-secret", 2*time.Minute,
	)

	return installer, client
}

func expectRancherInstall(
	t *testing.T,
	client *helm.MockInterface,
	timeout time.Duration,
	installErr error,
) {
	t.Helper()

	client.On("AddRepository",
		mock.Anything,
		mock.MatchedBy(func(entry *helm.RepositoryEntry) bool {
			return entry != nil && entry.Name == "rancher-latest" &&
				entry.URL == "https://releases.rancher.com/server-charts/latest"
		}),
		mock.Anything,
	).Return(nil)

	client.On("InstallOrUpgradeChart",
		mock.Anything,
		mock.MatchedBy(func(spec *helm.ChartSpec) bool {
			if spec == nil {
				return false
			}

			assert.Equal(t, "rancher", spec.ReleaseName)
			assert.Equal(t, "rancher-latest/rancher", spec.ChartName)
			assert.Equal(t, "cattle-system", spec.Namespace)
			assert.Equal(t, "https://releases.rancher.com/server-charts/latest", spec.RepoURL)
			assert.True(t, spec.CreateNamespace)
			assert.True(t, spec.Wait)
			assert.True(t, spec.WaitForJobs)
			assert.Equal(t, timeout, spec.Timeout)
			assert.Equal(t, "rancher.homelab.local", spec.SetValues["hostname"])
			assert.Equal(t, "3", spec.SetValues["replicas"])
			assert.Equal(t, "super-secret", spec.SetValues["bootstrapPassword"])

			return true
		}),
	).Return(nil, installErr)
}

func TestNewRancherInstaller(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	installer := rancherinstaller.NewRancherInstaller(
		client, fake.NewClientset(), rancherConfig(), "", 5*time.Second,
	)

	assert.NotNil(t, installer)
}

func TestRancherInstallerInstallSuccess(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t)
	expectRancherInstall(t, client, 2*time.Minute, nil)

	err := installer.Install(context.Background())

	require.NoError(t, err)
}

func TestRancherInstallerInstallRequiresHostname(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	installer := rancherinstaller.NewRancherInstaller(
		client, rolledOutClientset(), v1alpha1.Rancher{Enabled: true}, "", 2*time.Minute,
	)

	err := installer.Install(context.Background())

	require.ErrorIs(t, err, rancherinstaller.ErrHostnameRequired)
}

func TestRancherInstallerInstallRepoError(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t)
	client.On("AddRepository", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add rancher repository")
}

func TestRancherInstallerInstallChartError(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t)
	expectRancherInstall(t, client, 2*time.Minute, assert.AnError)

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install rancher chart")
}

func TestRancherInstallerInstallWaitsForRollout(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	expectRancherInstall(t, client, 200*time.Millisecond, nil)

	// No rancher deployment in the cluster, so the rollout wait times out.
	installer := rancherinstaller.NewRancherInstaller(
		client, fake.NewClientset(), rancherConfig(), "super-secret", 200*time.Millisecond,
	)

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait for rancher components")
}

func TestRancherInstallerInstallDefaultsReplicasAndOmitsPassword(t *testing.T) {
	t.Parallel()

	client := helm.NewMockInterface(t)
	config := v1alpha1.Rancher{Enabled: true, Hostname: "rancher.homelab.local"}
	installer := rancherinstaller.NewRancherInstaller(
		client, rolledOutClientset(), config, "", 2*time.Minute,
	)

	client.On("AddRepository", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("InstallOrUpgradeChart",
		mock.Anything,
		mock.MatchedBy(func(spec *helm.ChartSpec) bool {
			if spec == nil {
				return false
			}

			assert.Equal(t, "1", spec.SetValues["replicas"])
			assert.NotContains(t, spec.SetValues, "bootstrapPassword")

			return true
		}),
	).Return(nil, nil)

	err := installer.Install(context.Background())

	require.NoError(t, err)
}

func TestRancherInstallerUninstallSuccess(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t)
	client.On("UninstallRelease", mock.Anything, "rancher", "cattle-system").Return(nil)

	err := installer.Uninstall(context.Background())

	require.NoError(t, err)
}

func TestRancherInstallerUninstallError(t *testing.T) {
	t.Parallel()

	installer, client := newInstallerWithDefaults(t)
	client.On("UninstallRelease", mock.Anything, "rancher", "cattle-system").
		Return(assert.AnError)

	err := installer.Uninstall(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to uninstall rancher release")
}
