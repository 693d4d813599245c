package installer

import (
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/client/helm"
	certmanagerinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/certmanager"
	fleetinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/fleet"
	rancherinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/rancher"
	apiextclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// Component names used as keys in the installer map.
const (
	ComponentCertManager = "cert-manager"
	ComponentRancher     = "rancher"
	ComponentFleet       = "fleet"
)

// InstallOrder returns component names in dependency order. Rancher needs
// cert-manager's webhook and Fleet needs Rancher's embedded controller.
func InstallOrder() []string {
	return []string{ComponentCertManager, ComponentRancher, ComponentFleet}
}

// Factory creates installers based on cluster configuration.
// It holds the shared dependencies required by installers.
type Factory struct {
	helmClient        helm.Interface
	clientset         kubernetes.Interface
	apiextClient      apiextclientset.Interface
	dynamicClient     dynamic.Interface
	bootstrapPassword string
	ageKey            []byte
	timeout           time.Duration
}

// NewFactory creates a new installer factory with the required dependencies.
// The Rancher bootstrap password and the age key arrive resolved by the
// caller, empty values disable the respective features.
func NewFactory(
	helmClient helm.Interface,
	clientset kubernetes.Interface,
	apiextClient apiextclientset.Interface,
	dynamicClient dynamic.Interface,
	bootstrapPassword string,
	ageKey []byte,
	timeout time.Duration,
) *Factory {
	return &Factory{
		helmClient:        helmClient,
		clientset:         clientset,
		apiextClient:      apiextClient,
		dynamicClient:     dynamicClient,
		bootstrapPassword: bootstrapPassword,
		ageKey:            ageKey,
		timeout:           timeout,
	}
}

// CreateInstallersForConfig creates installers for all components enabled in
// the cluster config. Returns a map of component name to installer.
func (f *Factory) CreateInstallersForConfig(cfg *v1alpha1.Cluster) map[string]Installer {
	installers := make(map[string]Installer)
	spec := cfg.Spec

	if spec.CertManager.Enabled {
		installers[ComponentCertManager] = certmanagerinstaller.NewCertManagerInstaller(
			f.helmClient, f.clientset, spec.CertManager.Version, f.timeout,
		)
	}

	if spec.Rancher.Enabled {
		installers[ComponentRancher] = rancherinstaller.NewRancherInstaller(
			f.helmClient, f.clientset, spec.Rancher, f.bootstrapPassword,
			MaxTimeout(f.timeout, RancherInstallTimeout),
		)
	}

	if spec.Fleet.RepoURL != "" {
		installers[ComponentFleet] = fleetinstaller.NewFleetInstaller(
			f.clientset, f.apiextClient, f.dynamicClient,
			spec.Name, spec.Fleet, f.ageKey, f.timeout,
		)
	}

	return installers
}
