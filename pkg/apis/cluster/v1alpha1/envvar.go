package v1alpha1

import "github.com/kroft-dev/kroft/pkg/utils/envvar"

// ExpandEnvVars expands ${VAR_NAME} placeholders in all user-facing string
// fields of the configuration. Unset variables expand to the empty string.
// Call this after unmarshaling so paths and URLs can reference the
// environment.
func (c *Cluster) ExpandEnvVars() {
	spec := &c.Spec

	spec.Connection.Kubeconfig = envvar.Expand(spec.Connection.Kubeconfig)
	spec.Connection.Context = envvar.Expand(spec.Connection.Context)

	spec.SSH.User = envvar.Expand(spec.SSH.User)
	spec.SSH.IdentityFile = envvar.Expand(spec.SSH.IdentityFile)
	spec.SSH.KnownHostsFile = envvar.Expand(spec.SSH.KnownHostsFile)

	spec.CloudInit.OutputDir = envvar.Expand(spec.CloudInit.OutputDir)

	spec.K3s.TokenFile = envvar.Expand(spec.K3s.TokenFile)

	spec.Rancher.Hostname = envvar.Expand(spec.Rancher.Hostname)
	spec.Rancher.BootstrapPasswordFile = envvar.Expand(spec.Rancher.BootstrapPasswordFile)

	spec.Fleet.RepoURL = envvar.Expand(spec.Fleet.RepoURL)

	spec.Workload.SourceDirectory = envvar.Expand(spec.Workload.SourceDirectory)
}
