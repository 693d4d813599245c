package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/client/helm"
	"github.com/kroft-dev/kroft/pkg/client/ssh"
	"github.com/kroft-dev/kroft/pkg/fsutil"
	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/kroft-dev/kroft/pkg/k8s/readiness"
	"github.com/kroft-dev/kroft/pkg/parallel"
	"github.com/kroft-dev/kroft/pkg/svc/installer"
	k3sinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/k3s"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
	apiextclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

const (
	// sshWaitInterval spaces connection attempts while nodes are still
	// booting. Each attempt is a full TCP dial plus handshake.
	sshWaitInterval = 5 * time.Second

	// defaultTimeout bounds each stage wait when the connection timeout is
	// not configured.
	defaultTimeout = 5 * time.Minute

	// workerRoleLabel marks agent nodes, which K3s leaves unlabeled.
	workerRoleLabel = "node-role.kubernetes.io/worker"
	workerRoleValue = "worker"
)

// NodeSession is an open connection to a single node. *ssh.Client satisfies
// it.
type NodeSession interface {
	k3sinstaller.Runner
	Close() error
}

// K3sInstaller is the K3s lifecycle surface bootstrap drives over SSH.
// *k3sinstaller.Installer satisfies it.
type K3sInstaller interface {
	InstallServer(ctx context.Context, node k3sinstaller.Runner, token string) error
	InstallAgent(ctx context.Context, node k3sinstaller.Runner, serverURL, token string) error
	Token(ctx context.Context, node k3sinstaller.Runner) (string, error)
	Kubeconfig(
		ctx context.Context,
		node k3sinstaller.Runner,
		serverAddress, clusterName string,
	) ([]byte, error)
	UninstallServer(ctx context.Context, node k3sinstaller.Runner) error
	UninstallAgent(ctx context.Context, node k3sinstaller.Runner) error
}

// Clients bundles the cluster-facing clients built once the kubeconfig lands
// on disk.
type Clients struct {
	Clientset kubernetes.Interface
	APIExt    apiextclientset.Interface
	Dynamic   dynamic.Interface
	Helm      helm.Interface
}

// Options carries the secrets the caller resolves before bootstrap starts.
type Options struct {
	// BootstrapPassword seeds Rancher's first admin login. Empty lets the
	// chart generate one.
	BootstrapPassword string
	// AgeKey provisions the sops-age secret Fleet decrypts with. Empty skips
	// the secret.
	AgeKey []byte
}

// Dependencies are the orchestrator's replaceable parts. NewOrchestrator
// fills in the real implementations; tests inject fakes.
type Dependencies struct {
	// ConnectNode dials a node and completes the SSH handshake.
	ConnectNode func(ctx context.Context, config ssh.Config) (NodeSession, error)
	// WaitForSSH polls until a node accepts SSH connections.
	WaitForSSH func(ctx context.Context, config ssh.Config, interval, timeout time.Duration) error
	// K3s installs and uninstalls K3s on nodes.
	K3s K3sInstaller
	// NewClients builds the cluster clients from a kubeconfig on disk.
	NewClients func(kubeconfigPath, contextName string) (*Clients, error)
	// NewInstallers maps the enabled components onto their installers.
	NewInstallers func(clients *Clients) map[string]installer.Installer
	// Executor bounds the per-node fan-out.
	Executor *parallel.Executor
}

// Orchestrator runs bootstrap, teardown, and status against one cluster.
type Orchestrator struct {
	cluster *v1alpha1.Cluster
	opts    Options
	deps    Dependencies
	out     io.Writer
	tmr     timer.Timer
	timeout time.Duration
}

// NewOrchestrator creates an orchestrator wired to the real SSH, Kubernetes,
// and Helm implementations. Progress messages go to out.
func NewOrchestrator(cluster *v1alpha1.Cluster, out io.Writer, opts Options) *Orchestrator {
	orch := NewOrchestratorWithDependencies(cluster, out, opts, Dependencies{
		ConnectNode: connectNode,
		WaitForSSH:  ssh.WaitForReady,
		K3s:         k3sinstaller.NewInstaller(cluster.Spec.K3s, connectionTimeout(cluster)),
		NewClients:  newClients,
	})
	orch.deps.NewInstallers = orch.defaultInstallers

	return orch
}

// NewOrchestratorWithDependencies is NewOrchestrator with explicit
// dependencies for testing purposes.
func NewOrchestratorWithDependencies(
	cluster *v1alpha1.Cluster,
	out io.Writer,
	opts Options,
	deps Dependencies,
) *Orchestrator {
	if deps.Executor == nil {
		deps.Executor = parallel.NewExecutor(0)
	}

	if out == nil {
		out = os.Stdout
	}

	// Stage actions fan out across nodes, so their progress lines must not
	// interleave mid-line.
	return &Orchestrator{
		cluster: cluster,
		opts:    opts,
		deps:    deps,
		out:     parallel.NewSyncWriter(out),
		tmr:     timer.New(),
		timeout: connectionTimeout(cluster),
	}
}

// Bootstrap takes the cluster from bare nodes to running components. The
// first failing stage aborts the run; completed work is left in place and a
// re-run picks up where it stopped.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	err := o.cluster.Spec.Validate()
	if err != nil {
		return fmt.Errorf("validate cluster configuration: %w", err)
	}

	o.tmr.Start()

	spec := o.cluster.Spec
	workers := spec.Workers()

	notify.Titlef(o.out, "🥾", "Bootstrapping cluster '%s' (%d node(s))", spec.Name, len(spec.Nodes))

	err = o.runStage(ctx, stage{
		emoji:   "🔌",
		title:   "Waiting for SSH on all nodes",
		success: "all nodes reachable",
		failure: "wait for node ssh",
	}, o.waitForNodes)
	if err != nil {
		return err
	}

	master, ok := spec.Master()
	if !ok {
		return fmt.Errorf("validate cluster configuration: %w", v1alpha1.ErrNoMasterNode)
	}

	server, err := o.deps.ConnectNode(ctx, nodeSSHConfig(spec, *master))
	if err != nil {
		return fmt.Errorf("connect to master '%s': %w", master.Name, err)
	}

	defer func() { _ = server.Close() }()

	err = o.runStage(ctx, stage{
		emoji:   "📦",
		title:   fmt.Sprintf("Installing K3s server on '%s'", master.Name),
		success: "k3s server active",
		failure: "install k3s server",
	}, func(stageCtx context.Context) error {
		return o.installServer(stageCtx, server)
	})
	if err != nil {
		return err
	}

	var clients *Clients

	err = o.runStage(ctx, stage{
		emoji:   "🔑",
		title:   "Fetching kubeconfig",
		success: "API server ready",
		failure: "fetch kubeconfig",
	}, func(stageCtx context.Context) error {
		stageClients, fetchErr := o.fetchKubeconfig(stageCtx, server, master.Address)
		if fetchErr != nil {
			return fetchErr
		}

		clients = stageClients

		return nil
	})
	if err != nil {
		return err
	}

	if len(workers) > 0 {
		err = o.runStage(ctx, stage{
			emoji:   "🧩",
			title:   fmt.Sprintf("Joining %d worker node(s)", len(workers)),
			success: "all workers joined",
			failure: "join workers",
		}, func(stageCtx context.Context) error {
			return o.joinWorkers(stageCtx, server, master.Address, workers)
		})
		if err != nil {
			return err
		}
	}

	err = o.runStage(ctx, stage{
		emoji:   "🏷️",
		title:   fmt.Sprintf("Waiting for %d node(s) to become Ready", len(spec.Nodes)),
		success: "all nodes Ready",
		failure: "wait for nodes",
	}, func(stageCtx context.Context) error {
		return o.waitAndLabelNodes(stageCtx, clients.Clientset, workers)
	})
	if err != nil {
		return err
	}

	err = o.installComponents(ctx, clients)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(o.out)
	notify.SuccessWithTimerf(o.out, o.tmr, "cluster '%s' is ready", spec.Name)
	notify.Infof(o.out, "kubeconfig context: %s", ContextName(spec))

	return nil
}

// stage describes one bootstrap step's messaging.
type stage struct {
	emoji   string
	title   string
	success string
	failure string
}

// runStage frames an action with a stage timer, a title, and a success or
// failure message.
func (o *Orchestrator) runStage(
	ctx context.Context,
	info stage,
	action func(context.Context) error,
) error {
	o.tmr.NewStage()

	_, _ = fmt.Fprintln(o.out)
	notify.Titlef(o.out, info.emoji, "%s", info.title)

	err := action(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", info.failure, err)
	}

	notify.SuccessWithTimerf(o.out, o.tmr, "%s", info.success)

	return nil
}

// waitForNodes polls every node in parallel until SSH answers.
func (o *Orchestrator) waitForNodes(ctx context.Context) error {
	spec := o.cluster.Spec

	tasks := make([]parallel.Task, 0, len(spec.Nodes))

	for _, node := range spec.Nodes {
		tasks = append(tasks, func(taskCtx context.Context) error {
			err := o.deps.WaitForSSH(taskCtx, nodeSSHConfig(spec, node), sshWaitInterval, o.timeout)
			if err != nil {
				return fmt.Errorf("node '%s': %w", node.Name, err)
			}

			notify.Activityf(o.out, "node '%s' (%s) reachable", node.Name, node.Address)

			return nil
		})
	}

	return o.deps.Executor.Execute(ctx, tasks...)
}

// installServer installs the K3s server on the connected master node.
func (o *Orchestrator) installServer(ctx context.Context, server NodeSession) error {
	token, err := o.configuredToken()
	if err != nil {
		return err
	}

	return o.deps.K3s.InstallServer(ctx, server, token)
}

// fetchKubeconfig pulls the admin kubeconfig off the server node, merges it
// into the local kubeconfig, builds the cluster clients, and waits for the
// API server to answer.
func (o *Orchestrator) fetchKubeconfig(
	ctx context.Context,
	server NodeSession,
	serverAddress string,
) (*Clients, error) {
	contextName := ContextName(o.cluster.Spec)

	raw, err := o.deps.K3s.Kubeconfig(ctx, server, serverAddress, contextName)
	if err != nil {
		return nil, err
	}

	path, err := KubeconfigPath(o.cluster.Spec)
	if err != nil {
		return nil, err
	}

	err = k8s.MergeKubeconfig(raw, path)
	if err != nil {
		return nil, err
	}

	notify.Activityf(o.out, "kubeconfig merged into %s", path)

	clients, err := o.deps.NewClients(path, contextName)
	if err != nil {
		return nil, err
	}

	err = readiness.WaitForAPIServerReady(ctx, clients.Clientset, o.timeout)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

// joinWorkers installs the K3s agent on every worker in parallel.
func (o *Orchestrator) joinWorkers(
	ctx context.Context,
	server NodeSession,
	serverAddress string,
	workers []v1alpha1.Node,
) error {
	token, err := o.joinToken(ctx, server)
	if err != nil {
		return err
	}

	serverURL := k3sinstaller.ServerURL(serverAddress)
	spec := o.cluster.Spec

	tasks := make([]parallel.Task, 0, len(workers))

	for _, worker := range workers {
		tasks = append(tasks, func(taskCtx context.Context) error {
			session, connectErr := o.deps.ConnectNode(taskCtx, nodeSSHConfig(spec, worker))
			if connectErr != nil {
				return fmt.Errorf("connect to '%s': %w", worker.Name, connectErr)
			}

			defer func() { _ = session.Close() }()

			installErr := o.deps.K3s.InstallAgent(taskCtx, session, serverURL, token)
			if installErr != nil {
				return fmt.Errorf("install agent on '%s': %w", worker.Name, installErr)
			}

			notify.Activityf(o.out, "node '%s' joined", worker.Name)

			return nil
		})
	}

	return o.deps.Executor.Execute(ctx, tasks...)
}

// waitAndLabelNodes waits for every node to report Ready and then labels the
// workers with their role.
func (o *Orchestrator) waitAndLabelNodes(
	ctx context.Context,
	clientset kubernetes.Interface,
	workers []v1alpha1.Node,
) error {
	err := readiness.WaitForNodesReady(ctx, clientset, len(o.cluster.Spec.Nodes), o.timeout)
	if err != nil {
		return err
	}

	for _, worker := range workers {
		err = k8s.LabelNode(ctx, clientset, worker.Name, workerRoleLabel, workerRoleValue)
		if err != nil {
			return err
		}
	}

	return nil
}

// installComponents runs the enabled component installers in dependency
// order, one stage each.
func (o *Orchestrator) installComponents(ctx context.Context, clients *Clients) error {
	installers := o.deps.NewInstallers(clients)

	for _, name := range installer.InstallOrder() {
		componentInstaller, enabled := installers[name]
		if !enabled {
			continue
		}

		err := o.runStage(ctx, stage{
			emoji:   componentEmoji(name),
			title:   "Installing " + name,
			success: name + " ready",
			failure: "install " + name,
		}, componentInstaller.Install)
		if err != nil {
			return err
		}
	}

	return nil
}

// defaultInstallers builds the component installers from the cluster config
// and the resolved secrets.
func (o *Orchestrator) defaultInstallers(clients *Clients) map[string]installer.Installer {
	factory := installer.NewFactory(
		clients.Helm,
		clients.Clientset,
		clients.APIExt,
		clients.Dynamic,
		o.opts.BootstrapPassword,
		o.opts.AgeKey,
		o.timeout,
	)

	return factory.CreateInstallersForConfig(o.cluster)
}

// configuredToken reads the join token file when one is configured. An empty
// result lets the K3s server generate a token.
func (o *Orchestrator) configuredToken() (string, error) {
	tokenFile := o.cluster.Spec.K3s.TokenFile
	if tokenFile == "" {
		return "", nil
	}

	content, err := fsutil.ReadFileSafe(tokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}

// joinToken returns the token agents join with: the configured token file
// when present, otherwise the token the server generated.
func (o *Orchestrator) joinToken(ctx context.Context, server NodeSession) (string, error) {
	token, err := o.configuredToken()
	if err != nil || token != "" {
		return token, err
	}

	return o.deps.K3s.Token(ctx, server)
}

func componentEmoji(name string) string {
	switch name {
	case installer.ComponentCertManager:
		return "🔐"
	case installer.ComponentRancher:
		return "🐮"
	case installer.ComponentFleet:
		return "🚚"
	default:
		return "📦"
	}
}

// ContextName returns the kubeconfig context the cluster is reachable under.
// The configured connection context wins; otherwise the cluster name is used.
// Either way the name is sanitized the same way the kubeconfig rewrite
// sanitizes its entries.
func ContextName(spec v1alpha1.Spec) string {
	name := spec.Connection.Context
	if name == "" {
		name = spec.Name
	}

	return k8s.SanitizeToDNSLabel(name)
}

// KubeconfigPath returns the expanded kubeconfig path for the cluster.
func KubeconfigPath(spec v1alpha1.Spec) (string, error) {
	path := spec.Connection.Kubeconfig
	if path == "" {
		path = k8s.DefaultKubeconfigPath()
	}

	expanded, err := fsutil.ExpandHomePath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand home path: %w", err)
	}

	return expanded, nil
}

// nodeSSHConfig builds the SSH configuration for one node from the shared
// SSH settings.
func nodeSSHConfig(spec v1alpha1.Spec, node v1alpha1.Node) ssh.Config {
	return ssh.Config{
		User:           spec.SSH.User,
		Host:           node.Address,
		Port:           spec.SSH.Port,
		IdentityFile:   spec.SSH.IdentityFile,
		KnownHostsFile: spec.SSH.KnownHostsFile,
	}
}

// connectionTimeout reads the configured stage timeout, falling back to the
// default.
func connectionTimeout(cluster *v1alpha1.Cluster) time.Duration {
	if cluster == nil {
		return defaultTimeout
	}

	timeout := cluster.Spec.Connection.Timeout.Duration
	if timeout <= 0 {
		return defaultTimeout
	}

	return timeout
}

// connectNode dials a node and returns the open session.
//
//nolint:ireturn // NodeSession keeps the SSH client swappable in tests
func connectNode(ctx context.Context, config ssh.Config) (NodeSession, error) {
	client := ssh.NewClient(config)

	err := client.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("ssh connect: %w", err)
	}

	return client, nil
}

// newClients builds the real cluster clients from a kubeconfig on disk.
func newClients(kubeconfigPath, contextName string) (*Clients, error) {
	clientset, err := k8s.NewClientset(kubeconfigPath, contextName)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes client: %w", err)
	}

	apiextClient, err := k8s.NewAPIExtensionsClientset(kubeconfigPath, contextName)
	if err != nil {
		return nil, fmt.Errorf("create apiextensions client: %w", err)
	}

	dynamicClient, err := k8s.NewDynamicClient(kubeconfigPath, contextName)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	helmClient, err := helm.NewClient(kubeconfigPath, contextName)
	if err != nil {
		return nil, fmt.Errorf("create helm client: %w", err)
	}

	return &Clients{
		Clientset: clientset,
		APIExt:    apiextClient,
		Dynamic:   dynamicClient,
		Helm:      helmClient,
	}, nil
}
