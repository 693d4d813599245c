package dev

import (
	"bytes"
	"context"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	clusterprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// fakeProvisioner records lifecycle calls instead of talking to Docker.
type fakeProvisioner struct {
	created []string
	deleted []string
	names   []string

	createErr error
	deleteErr error
	listErr   error
}

func (f *fakeProvisioner) Create(_ context.Context, name string) error {
	f.created = append(f.created, name)

	return f.createErr
}

func (f *fakeProvisioner) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)

	return f.deleteErr
}

func (f *fakeProvisioner) List(context.Context) ([]string, error) {
	return f.names, f.listErr
}

func (f *fakeProvisioner) Exists(_ context.Context, name string) (bool, error) {
	for _, existing := range f.names {
		if existing == name {
			return true, nil
		}
	}

	return false, nil
}

type fakeFactory struct {
	provisioner clusterprovisioner.ClusterProvisioner
	err         error
}

func (f fakeFactory) Create(*v1alpha1.Cluster) (clusterprovisioner.ClusterProvisioner, error) {
	return f.provisioner, f.err
}

// devRuntime builds a runtime container whose factory resolves to the given
// fake, so command tests never touch a container engine.
func devRuntime(factory clusterprovisioner.Factory) *runtime.Runtime {
	return runtime.New(func(injector runtime.Injector) error {
		do.Provide(injector, func(runtime.Injector) (timer.Timer, error) {
			return timer.New(), nil
		})
		do.Provide(injector, func(runtime.Injector) (clusterprovisioner.Factory, error) {
			return factory, nil
		})

		return nil
	})
}

func TestNewDevCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDevCmd(runtime.NewRuntime())

	assert.Equal(t, "dev", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	subcommands := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		subcommands = append(subcommands, sub.Name())
	}

	assert.Contains(t, subcommands, "create")
	assert.Contains(t, subcommands, "delete")
	assert.Contains(t, subcommands, "list")
}

func TestDevCmdShowsHelpWhenCalledWithoutSubcommand(t *testing.T) {
	t.Parallel()

	var output bytes.Buffer

	cmd := NewDevCmd(runtime.NewRuntime())
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "Manage local development clusters")
	assert.Contains(t, output.String(), "Available Commands:")
}
