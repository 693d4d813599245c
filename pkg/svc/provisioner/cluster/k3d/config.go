package k3dprovisioner

import (
	"fmt"

	"github.com/docker/go-connections/nat"
	k3dtypes "github.com/k3d-io/k3d/v5/pkg/config/types"
	v1alpha5 "github.com/k3d-io/k3d/v5/pkg/config/v1alpha5"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

// NewSimpleConfig renders the k3d simple configuration for the dev cluster
// spec. Port mappings keep their Docker publish syntax (k3d consumes the raw
// string) and attach to the cluster loadbalancer.
func NewSimpleConfig(dev v1alpha1.Dev) (*v1alpha5.SimpleConfig, error) {
	ports, err := loadbalancerPorts(dev.PortMappings)
	if err != nil {
		return nil, err
	}

	return &v1alpha5.SimpleConfig{
		TypeMeta: k3dtypes.TypeMeta{
			APIVersion: "k3d.io/v1alpha5",
			Kind:       "Simple",
		},
		ObjectMeta: k3dtypes.ObjectMeta{
			Name: dev.Name,
		},
		Servers: 1,
		Ports:   ports,
		Options: v1alpha5.SimpleConfigOptions{
			K3dOptions: v1alpha5.SimpleConfigOptionsK3d{
				Wait: true,
			},
		},
	}, nil
}

// loadbalancerPorts validates each Docker publish spec and wires it to the
// k3d loadbalancer node filter.
func loadbalancerPorts(specs []string) ([]v1alpha5.PortWithNodeFilters, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	ports := make([]v1alpha5.PortWithNodeFilters, 0, len(specs))

	for _, spec := range specs {
		_, err := nat.ParsePortSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("parse port mapping %q: %w", spec, err)
		}

		ports = append(ports, v1alpha5.PortWithNodeFilters{
			Port:        spec,
			NodeFilters: []string{"loadbalancer"},
		})
	}

	return ports, nil
}
