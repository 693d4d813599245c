package infra

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/client/terraform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
)

func TestNewPlanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewPlanCmd(runtime.NewRuntime())

	assert.Equal(t, "plan", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	dir := cmd.Flags().Lookup("dir")
	require.NotNil(t, dir)
	assert.Equal(t, DefaultInfraDir, dir.DefValue)

	assert.NotNil(t, cmd.Flags().Lookup("var-file"))
	assert.NotNil(t, cmd.Flags().Lookup("var"))
}

func TestPlanCmdRunsTerraform(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll("terraform", 0o750))

	fake := &fakeRunner{}
	installFakeRunner(t, fake)

	var output bytes.Buffer

	cmd := NewPlanCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{
		"--var-file", "homelab.tfvars",
		"--var", "gateway=192.168.1.1",
	})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, 1, fake.planCalls)
	assert.Equal(t, "terraform", fake.workDir)
	assert.Equal(t, terraform.Options{
		VarFiles: []string{"homelab.tfvars"},
		Vars:     map[string]string{"gateway": "192.168.1.1"},
	}, fake.lastOpts)
	assert.Contains(t, output.String(), "plan complete")
}

func TestPlanCmdFailsWhenDirectoryMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	fake := &fakeRunner{}
	installFakeRunner(t, fake)

	cmd := NewPlanCmd(runtime.NewRuntime())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to access terraform directory 'terraform'")
	assert.Equal(t, 0, fake.planCalls)
}
