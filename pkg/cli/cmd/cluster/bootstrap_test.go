package cluster

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	runtime "github.com/kroft-dev/kroft/pkg/di"
	rancherinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/rancher"
)

var errBootstrapFailed = errors.New("install k3s server: exit status 1")

func TestNewBootstrapCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBootstrapCmd(runtime.NewRuntime())

	assert.Equal(t, "bootstrap", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup("age-key-file"))
	assert.NotNil(t, cmd.Flags().Lookup("kubeconfig"))
	assert.NotNil(t, cmd.Flags().Lookup("ssh-user"))
	assert.NotNil(t, cmd.Flags().Lookup("k3s-channel"))
}

func TestBootstrapCmdRunsOrchestrator(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	cmd := NewBootstrapCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 1, fake.bootstrapCalls)
	assert.Empty(t, fake.opts.BootstrapPassword)
	assert.Empty(t, fake.opts.AgeKey)
}

func TestBootstrapCmdPassesResolvedSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)
	t.Setenv(rancherinstaller.BootstrapPasswordEnvVar, "hunter2")

	ageKeyFile := filepath.Join(t.TempDir(), "age.key")
	require.NoError(t, os.WriteFile(ageKeyFile, []byte("AGE-SECRET-KEY-1TEST\n"), 0o600))

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	cmd := NewBootstrapCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--age-key-file", ageKeyFile})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "hunter2", fake.opts.BootstrapPassword)
	assert.Equal(t, []byte("AGE-SECRET-KEY-1TEST\n"), fake.opts.AgeKey)
}

func TestBootstrapCmdMissingAgeKeyFile(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	cmd := NewBootstrapCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--age-key-file", "does-not-exist.key"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read age key file")
	assert.Zero(t, fake.bootstrapCalls)
}

func TestBootstrapCmdWrapsOrchestratorError(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{bootstrapErr: errBootstrapFailed}
	installFakeOrchestrator(t, fake)

	cmd := NewBootstrapCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bootstrap cluster")
	assert.ErrorIs(t, err, errBootstrapFailed)
}

func TestBootstrapCmdFailsWithoutNodes(t *testing.T) {
	t.Chdir(t.TempDir())

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	cmd := NewBootstrapCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load cluster configuration")
	assert.Zero(t, fake.bootstrapCalls)
}
