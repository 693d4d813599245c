package k3dprovisioner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	k3dprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster/k3d"
)

func TestNewSimpleConfig_Defaults(t *testing.T) {
	t.Parallel()

	config, err := k3dprovisioner.NewSimpleConfig(v1alpha1.Dev{Name: "kroft-dev"})

	require.NoError(t, err)
	assert.Equal(t, "k3d.io/v1alpha5", config.TypeMeta.APIVersion)
	assert.Equal(t, "Simple", config.TypeMeta.Kind)
	assert.Equal(t, "kroft-dev", config.Name)
	assert.Equal(t, 1, config.Servers)
	assert.True(t, config.Options.K3dOptions.Wait)
	assert.Empty(t, config.Ports)
}

func TestNewSimpleConfig_PortMappings(t *testing.T) {
	t.Parallel()

	config, err := k3dprovisioner.NewSimpleConfig(v1alpha1.Dev{
		Name:         "kroft-dev",
		PortMappings: []string{"8080:80", "8443:443"},
	})

	require.NoError(t, err)
	require.Len(t, config.Ports, 2)
	assert.Equal(t, "8080:80", config.Ports[0].Port)
	assert.Equal(t, []string{"loadbalancer"}, config.Ports[0].NodeFilters)
	assert.Equal(t, "8443:443", config.Ports[1].Port)
	assert.Equal(t, []string{"loadbalancer"}, config.Ports[1].NodeFilters)
}

func TestNewSimpleConfig_InvalidPortMapping(t *testing.T) {
	t.Parallel()

	_, err := k3dprovisioner.NewSimpleConfig(v1alpha1.Dev{
		Name:         "kroft-dev",
		PortMappings: []string{"not-a-port"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse port mapping")
}
