package k3sinstaller_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/poll"
	k3sinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/k3s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errCommandFailed = errors.New("Process exited with status 3")

const isActiveServer = "systemctl is-active k3s"

const isActiveAgent = "systemctl is-active k3s-agent"

func installCommandMatcher(fragments ...string) any {
	return mock.MatchedBy(func(command string) bool {
		if !strings.HasPrefix(command, "curl -sfL https://get.k3s.io |") {
			return false
		}

		for _, fragment := range fragments {
			if !strings.Contains(command, fragment) {
				return false
			}
		}

		return true
	})
}

func TestInstallServer_SkipsWhenAlreadyActive(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveServer).Return("active", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	err := installer.InstallServer(context.Background(), node, "")
	require.NoError(t, err)
}

func TestInstallServer_InstallsAndWaitsForService(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveServer).Return("inactive", errCommandFailed).Once()
	node.On("Run", mock.Anything, installCommandMatcher(
		"INSTALL_K3S_CHANNEL='stable'",
		"sh -s - server",
		"--disable traefik",
	)).Return("", nil).Once()
	node.On("Run", mock.Anything, isActiveServer).Return("active", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{
		Channel: v1alpha1.K3sChannelStable,
		Disable: []string{"traefik"},
	}, 5*time.Second)

	err := installer.InstallServer(context.Background(), node, "")
	require.NoError(t, err)
}

func TestInstallServer_PinnedVersionAndToken(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveServer).Return("inactive", errCommandFailed).Once()
	node.On("Run", mock.Anything, installCommandMatcher(
		"INSTALL_K3S_VERSION='v1.31.4+k3s1'",
		"K3S_TOKEN='shared-token'",
		"--cluster-init",
	)).Return("", nil).Once()
	node.On("Run", mock.Anything, isActiveServer).Return("active", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{
		Version:    "v1.31.4+k3s1",
		ServerArgs: []string{"--cluster-init"},
	}, 5*time.Second)

	err := installer.InstallServer(context.Background(), node, "shared-token")
	require.NoError(t, err)
}

func TestInstallServer_InstallScriptFails(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveServer).Return("inactive", errCommandFailed).Once()
	node.On("Run", mock.Anything, installCommandMatcher()).
		Return("", errCommandFailed).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	err := installer.InstallServer(context.Background(), node, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run k3s server install script")
}

func TestInstallServer_ServiceNeverBecomesActive(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveServer).Return("inactive", errCommandFailed).Once()
	node.On("Run", mock.Anything, installCommandMatcher()).Return("", nil).Once()
	node.On("Run", mock.Anything, isActiveServer).Return("activating", errCommandFailed)

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 200*time.Millisecond)

	err := installer.InstallServer(context.Background(), node, "")
	require.Error(t, err)
	require.ErrorIs(t, err, poll.ErrTimeoutExceeded)
	assert.Contains(t, err.Error(), "wait for k3s service")
}

func TestInstallAgent_SkipsWhenAlreadyActive(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveAgent).Return("active", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	err := installer.InstallAgent(
		context.Background(), node,
		"https://192.168.1.10:6443", "shared-token",
	)
	require.NoError(t, err)
}

func TestInstallAgent_JoinsServer(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything, isActiveAgent).Return("inactive", errCommandFailed).Once()
	node.On("Run", mock.Anything, installCommandMatcher(
		"K3S_URL='https://192.168.1.10:6443'",
		"K3S_TOKEN='shared-token'",
		"sh -s - agent",
	)).Return("", nil).Once()
	node.On("Run", mock.Anything, isActiveAgent).Return("active", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{
		Channel: v1alpha1.K3sChannelStable,
	}, 5*time.Second)

	err := installer.InstallAgent(
		context.Background(), node,
		"https://192.168.1.10:6443", "shared-token",
	)
	require.NoError(t, err)
}

func TestToken_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Sudo", mock.Anything, "cat /var/lib/rancher/k3s/server/node-token").
		Return("K10c4::server:4ddd9c\n", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	token, err := installer.Token(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, "K10c4::server:4ddd9c", token)
}

func TestToken_EmptyFile(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Sudo", mock.Anything, "cat /var/lib/rancher/k3s/server/node-token").
		Return("\n", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	_, err := installer.Token(context.Background(), node)
	require.ErrorIs(t, err, k3sinstaller.ErrEmptyNodeToken)
}

func TestToken_ReadFails(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Sudo", mock.Anything, "cat /var/lib/rancher/k3s/server/node-token").
		Return("", errCommandFailed).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	_, err := installer.Token(context.Background(), node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read k3s node token")
}

func TestUninstallServer_RunsScriptWhenPresent(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything,
		"if [ -x /usr/local/bin/k3s-uninstall.sh ]; then sudo /usr/local/bin/k3s-uninstall.sh; fi",
	).Return("", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	err := installer.UninstallServer(context.Background(), node)
	require.NoError(t, err)
}

func TestUninstallAgent_RunsScriptWhenPresent(t *testing.T) {
	t.Parallel()

	node := k3sinstaller.NewMockRunner(t)
	node.On("Run", mock.Anything,
		"if [ -x /usr/local/bin/k3s-agent-uninstall.sh ]; then sudo /usr/local/bin/k3s-agent-uninstall.sh; fi",
	).Return("", nil).Once()

	installer := k3sinstaller.NewInstaller(v1alpha1.K3s{}, 5*time.Second)

	err := installer.UninstallAgent(context.Background(), node)
	require.NoError(t, err)
}

func TestServerURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://192.168.1.10:6443", k3sinstaller.ServerURL("192.168.1.10"))
}

func TestServiceNameForRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "k3s", k3sinstaller.ServiceNameForRole(v1alpha1.RoleMaster))
	assert.Equal(t, "k3s-agent", k3sinstaller.ServiceNameForRole(v1alpha1.RoleWorker))
}

func TestServiceState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		output   string
		err      error
		expected string
	}{
		{"active unit", "active\n", nil, "active"},
		{"inactive unit reports through nonzero exit", "inactive\n", errCommandFailed, "inactive"},
		{"failed unit", "failed\n", errCommandFailed, "failed"},
		{"unreachable node", "", errCommandFailed, "unknown"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			node := k3sinstaller.NewMockRunner(t)
			node.On("Run", mock.Anything, isActiveServer).
				Return(testCase.output, testCase.err).Once()

			state := k3sinstaller.ServiceState(context.Background(), node, "k3s")
			assert.Equal(t, testCase.expected, state)
		})
	}
}
