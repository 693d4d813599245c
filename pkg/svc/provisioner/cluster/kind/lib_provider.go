package kindprovisioner

import (
	"fmt"

	"sigs.k8s.io/kind/pkg/cluster"
	kindcmd "sigs.k8s.io/kind/pkg/cmd"
)

// libProvider backs KindProvider with the real kind library, reporting
// progress through kind's console logger.
type libProvider struct {
	provider *cluster.Provider
}

func newLibProvider() *libProvider {
	return &libProvider{
		provider: cluster.NewProvider(cluster.ProviderWithLogger(kindcmd.NewLogger())),
	}
}

func (p *libProvider) Create(name string, opts ...cluster.CreateOption) error {
	err := p.provider.Create(name, opts...)
	if err != nil {
		return fmt.Errorf("create kind cluster %q: %w", name, err)
	}

	return nil
}

func (p *libProvider) Delete(name, kubeconfigPath string) error {
	err := p.provider.Delete(name, kubeconfigPath)
	if err != nil {
		return fmt.Errorf("delete kind cluster %q: %w", name, err)
	}

	return nil
}

func (p *libProvider) List() ([]string, error) {
	clusters, err := p.provider.List()
	if err != nil {
		return nil, fmt.Errorf("list kind clusters: %w", err)
	}

	return clusters, nil
}
