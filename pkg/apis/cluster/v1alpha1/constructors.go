package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NewCluster creates a new Cluster with API metadata set. Default values are
// applied by the configuration system from the `default` field tags.
func NewCluster() *Cluster {
	return &Cluster{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		Spec: NewSpec(),
	}
}

// NewSpec creates a new Spec with empty sub-specs.
func NewSpec() Spec {
	return Spec{
		Name:        "",
		Connection:  NewConnection(),
		SSH:         SSH{},
		Nodes:       nil,
		Network:     Network{},
		CloudInit:   CloudInit{},
		K3s:         K3s{},
		CertManager: CertManager{},
		Rancher:     Rancher{},
		Fleet:       Fleet{},
		Workload:    Workload{},
		Dev:         Dev{},
	}
}

// NewConnection creates a new Connection with zero values.
func NewConnection() Connection {
	return Connection{
		Kubeconfig: "",
		Context:    "",
		Timeout:    metav1.Duration{Duration: 0},
	}
}
