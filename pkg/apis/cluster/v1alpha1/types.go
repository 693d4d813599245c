package v1alpha1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

const (
	// Group is the API group for kroft.
	Group = "kroft.dev"
	// Version is the API version for kroft.
	Version = "v1alpha1"
	// Kind is the kind for kroft clusters.
	Kind = "Cluster"
	// APIVersion is the full API version for kroft.
	APIVersion = Group + "/" + Version
)

// --- Core Types ---

// Cluster is the kroft cluster configuration, loaded from kroft.yaml. It
// carries TypeMeta for API versioning and Spec for the desired state.
type Cluster struct {
	metav1.TypeMeta `json:",inline" mapstructure:",squash"`

	Spec Spec `json:"spec,omitzero" mapstructure:"spec,omitempty"`
}

// Spec defines the desired state of a kroft cluster.
type Spec struct {
	// Name is the cluster name, used for the kubeconfig context and the
	// rewritten kubeconfig entries.
	Name        string      `default:"homelab" json:"name,omitzero"`
	Connection  Connection  `json:"connection,omitzero"`
	SSH         SSH         `json:"ssh,omitzero"`
	Nodes       []Node      `json:"nodes,omitzero"`
	Network     Network     `json:"network,omitzero"`
	CloudInit   CloudInit   `json:"cloudInit,omitzero"`
	K3s         K3s         `json:"k3s,omitzero"`
	CertManager CertManager `json:"certManager,omitzero"`
	Rancher     Rancher     `json:"rancher,omitzero"`
	Fleet       Fleet       `json:"fleet,omitzero"`
	Workload    Workload    `json:"workload,omitzero"`
	Dev         Dev         `json:"dev,omitzero"`
}

// Connection defines how kroft reaches the cluster API server.
type Connection struct {
	Kubeconfig string          `default:"~/.kube/config" json:"kubeconfig,omitzero"`
	Context    string          `                         json:"context,omitzero"`
	Timeout    metav1.Duration `default:"5m"             json:"timeout,omitzero"`
}

// SSH defines how kroft reaches cluster nodes over SSH.
type SSH struct {
	User           string `default:"pi"               json:"user,omitzero"`
	Port           int    `default:"22"               json:"port,omitzero"`
	IdentityFile   string `default:"~/.ssh/id_ed25519" json:"identityFile,omitzero"`
	KnownHostsFile string `                           json:"knownHostsFile,omitzero"`
}

// Node describes a single machine in the cluster.
type Node struct {
	// Name is the hostname assigned during provisioning.
	Name string `json:"name,omitzero"`
	// Address is the static IP the node is reachable at.
	Address string `json:"address,omitzero"`
	// Role selects whether the node runs the K3s server or joins as an agent.
	Role NodeRole `json:"role,omitzero"`
}

// Network defines the static addressing shared by all nodes.
type Network struct {
	Interface   string   `default:"eth0" json:"interface,omitzero"`
	CIDRPrefix  int      `default:"24"   json:"cidrPrefix,omitzero"`
	Gateway     string   `               json:"gateway,omitzero"`
	Nameservers []string `               json:"nameservers,omitzero"`
}

// CloudInit defines the node provisioning artifacts written by `node prepare`.
type CloudInit struct {
	OutputDir      string   `default:"cloud-init"  json:"outputDir,omitzero"`
	Timezone       string   `default:"Etc/UTC"     json:"timezone,omitzero"`
	Locale         string   `default:"en_US.UTF-8" json:"locale,omitzero"`
	AuthorizedKeys []string `                      json:"authorizedKeys,omitzero"`
	Packages       []string `                      json:"packages,omitzero"`
}

// K3s defines the K3s installation performed over SSH.
type K3s struct {
	// Channel selects the get.k3s.io release channel. Ignored when Version
	// pins an exact release.
	Channel K3sChannel `default:"stable" json:"channel,omitzero"`
	// Version pins an exact K3s version (e.g. v1.31.4+k3s1).
	Version string `json:"version,omitzero"`
	// Disable lists bundled K3s components to disable (e.g. traefik).
	Disable    []string `json:"disable,omitzero"`
	ServerArgs []string `json:"serverArgs,omitzero"`
	AgentArgs  []string `json:"agentArgs,omitzero"`
	// TokenFile points at a file holding the cluster join token. When empty
	// the token generated by the server is used.
	TokenFile string `json:"tokenFile,omitzero"`
}

// CertManager defines the cert-manager installation.
type CertManager struct {
	Enabled bool   `default:"true" json:"enabled,omitzero"`
	Version string `               json:"version,omitzero"`
}

// Rancher defines the Rancher installation.
type Rancher struct {
	Enabled  bool   `json:"enabled,omitzero"`
	Hostname string `json:"hostname,omitzero"`
	Version  string `json:"version,omitzero"`
	Replicas int    `default:"1" json:"replicas,omitzero"`
	// BootstrapPasswordFile points at a file holding the initial admin
	// password. KROFT_RANCHER_BOOTSTRAP_PASSWORD takes precedence.
	BootstrapPasswordFile string `json:"bootstrapPasswordFile,omitzero"`
}

// Fleet defines the Fleet GitOps wiring applied after bootstrap.
type Fleet struct {
	RepoURL   string   `                       json:"repoURL,omitzero"`
	Branch    string   `default:"main"          json:"branch,omitzero"`
	Paths     []string `                       json:"paths,omitzero"`
	Namespace string   `default:"fleet-default" json:"namespace,omitzero"`
}

// Workload defines where cluster manifests live.
type Workload struct {
	SourceDirectory string `default:"k8s" json:"sourceDirectory,omitzero"`
}

// Dev defines the local development cluster options.
type Dev struct {
	Distribution DevDistribution `default:"Kind"      json:"distribution,omitzero"`
	Name         string          `default:"kroft-dev" json:"name,omitzero"`
	// PortMappings are host:container port specs forwarded into the dev
	// cluster (Docker syntax, e.g. "8080:80").
	PortMappings []string `json:"portMappings,omitzero"`
}
