package kindprovisioner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

// NewClusterConfig renders the kind configuration for the dev cluster spec.
// Port mappings use Docker publish syntax and land on the single
// control-plane node, so published workloads are reachable from the host.
func NewClusterConfig(dev v1alpha1.Dev) (*v1alpha4.Cluster, error) {
	ports, err := portMappings(dev.PortMappings)
	if err != nil {
		return nil, err
	}

	return &v1alpha4.Cluster{
		TypeMeta: v1alpha4.TypeMeta{
			APIVersion: "kind.x-k8s.io/v1alpha4",
			Kind:       "Cluster",
		},
		Name: dev.Name,
		Nodes: []v1alpha4.Node{
			{
				Role:              v1alpha4.ControlPlaneRole,
				ExtraPortMappings: ports,
			},
		},
	}, nil
}

// portMappings converts Docker publish specs ("8080:80", "53:53/udp") into
// kind port mappings. Ranges expand into one mapping per port.
func portMappings(specs []string) ([]v1alpha4.PortMapping, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	mappings := make([]v1alpha4.PortMapping, 0, len(specs))

	for _, spec := range specs {
		parsed, err := nat.ParsePortSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("parse port mapping %q: %w", spec, err)
		}

		for _, mapping := range parsed {
			hostPort := 0

			if mapping.Binding.HostPort != "" {
				parsedPort, err := strconv.ParseInt(mapping.Binding.HostPort, 10, 32)
				if err != nil {
					return nil, fmt.Errorf("parse host port in %q: %w", spec, err)
				}

				hostPort = int(parsedPort)
			}

			mappings = append(mappings, v1alpha4.PortMapping{
				ContainerPort: int32(mapping.Port.Int()), //nolint:gosec // port numbers fit in int32
				HostPort:      int32(hostPort),
				ListenAddress: mapping.Binding.HostIP,
				Protocol:      portProtocol(mapping.Port.Proto()),
			})
		}
	}

	return mappings, nil
}

func portProtocol(proto string) v1alpha4.PortMappingProtocol {
	switch strings.ToLower(proto) {
	case "udp":
		return v1alpha4.PortMappingProtocolUDP
	case "sctp":
		return v1alpha4.PortMappingProtocolSCTP
	default:
		return v1alpha4.PortMappingProtocolTCP
	}
}
