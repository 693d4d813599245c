package cluster

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/cli/ui/confirm"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
)

var errTeardownFailed = errors.New("uninstall agents: connection refused")

func TestNewTeardownCmd(t *testing.T) {
	t.Parallel()

	cmd := NewTeardownCmd(runtime.NewRuntime())

	assert.Equal(t, "teardown", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup("skip-components"))
	assert.NotNil(t, cmd.Flags().Lookup("skip-uninstall"))
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}

func TestTeardownCmdRunsOrchestrator(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	cmd := NewTeardownCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--skip-components"})

	require.NoError(t, cmd.Execute())
	require.Len(t, fake.teardownOpts, 1)
	assert.Equal(t, bootstrap.TeardownOptions{SkipComponents: true}, fake.teardownOpts[0])
}

//nolint:paralleltest // overrides shared TTY checker state
func TestTeardownCmdPromptCancelled(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return true })
	t.Cleanup(restoreTTY)

	restoreStdin := confirm.SetStdinReaderForTests(strings.NewReader("no\n"))
	t.Cleanup(restoreStdin)

	var output bytes.Buffer

	cmd := NewTeardownCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.ErrorIs(t, err, confirm.ErrTeardownCancelled)
	assert.Empty(t, fake.teardownOpts)
	assert.Contains(t, output.String(), "pi-master (192.168.1.10)")
}

//nolint:paralleltest // overrides shared TTY checker state
func TestTeardownCmdPromptConfirmed(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{}
	installFakeOrchestrator(t, fake)

	restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return true })
	t.Cleanup(restoreTTY)

	restoreStdin := confirm.SetStdinReaderForTests(strings.NewReader("yes\n"))
	t.Cleanup(restoreStdin)

	cmd := NewTeardownCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Len(t, fake.teardownOpts, 1)
}

func TestTeardownCmdWrapsOrchestratorError(t *testing.T) {
	t.Chdir(t.TempDir())
	writeClusterConfig(t)

	fake := &fakeOrchestrator{teardownErr: errTeardownFailed}
	installFakeOrchestrator(t, fake)

	cmd := NewTeardownCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--force"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to tear down cluster")
	assert.ErrorIs(t, err, errTeardownFailed)
}
