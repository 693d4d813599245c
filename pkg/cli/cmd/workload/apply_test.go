package workload

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	runtime "github.com/kroft-dev/kroft/pkg/di"
)

func TestNewApplyCmd(t *testing.T) {
	t.Parallel()

	cmd := NewApplyCmd(runtime.NewRuntime())

	assert.Equal(t, "apply", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	skipValidation := cmd.Flags().Lookup("skip-validation")
	require.NotNil(t, skipValidation)
	assert.Equal(t, "false", skipValidation.DefValue)

	serverSide := cmd.Flags().Lookup("server-side")
	require.NotNil(t, serverSide)
	assert.Equal(t, "true", serverSide.DefValue)

	assert.NotNil(t, cmd.Flags().Lookup("skip-secrets"))
	assert.NotNil(t, cmd.Flags().Lookup("source-directory"))
	assert.NotNil(t, cmd.Flags().Lookup("kubeconfig"))
}

func TestApplyArgsUsesKustomizeWhenPresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "kustomization.yaml"),
		[]byte("resources: []\n"),
		0o600,
	))

	args := applyArgs(dir, true)
	assert.Equal(t, []string{"--kustomize", dir, "--server-side"}, args)
}

func TestApplyArgsFallsBackToRecursiveFilenames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	args := applyArgs(dir, false)
	assert.Equal(t, []string{"--filename", dir, "--recursive"}, args)
}

func TestApplyCmdValidatesBeforeApplying(t *testing.T) {
	t.Chdir(t.TempDir())
	writeWorkloadDir(t, map[string]string{"broken.yaml": invalidConfigMapYAML})

	var output bytes.Buffer

	cmd := NewApplyCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"--schema-location", writeSchemaDir(t)})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NotContains(t, output.String(), "with kubectl")
}

func TestApplyCmdFailsWhenDirectoryMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := NewApplyCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to access workload directory")
}
