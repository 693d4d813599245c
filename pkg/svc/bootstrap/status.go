package bootstrap

import (
	"context"
	"fmt"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/kroft-dev/kroft/pkg/k8s/readiness"
	"github.com/kroft-dev/kroft/pkg/parallel"
	certmanagerinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/certmanager"
	k3sinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/k3s"
	rancherinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/rancher"
	"github.com/kroft-dev/kroft/pkg/utils/labels"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// serviceStateActive is the systemd state a healthy K3s unit reports.
const serviceStateActive = "active"

// NodeStatus is one node's systemd service state, probed over SSH.
type NodeStatus struct {
	Node    v1alpha1.Node
	Service string
	State   string
	Err     error
}

// Healthy reports whether the node's K3s unit is active.
func (s NodeStatus) Healthy() bool {
	return s.Err == nil && s.State == serviceStateActive
}

// APIStatus is the API server's view of the cluster.
type APIStatus struct {
	Version    string
	ReadyNodes int
	TotalNodes int
	// Architectures lists the CPU architectures reported by the node labels,
	// sorted. Mixed-architecture clusters surface here.
	Architectures []string
	Err           error
}

// ComponentStatus is one component deployment's rollout state.
type ComponentStatus struct {
	Component  string
	Namespace  string
	Deployment string
	Ready      bool
	// FailingPods describes the namespace's unhealthy pods, one line each,
	// filled only when the deployment exists but is not rolled out.
	FailingPods []string
	Err         error
}

// Healthy reports whether the deployment is fully rolled out.
func (s ComponentStatus) Healthy() bool {
	return s.Err == nil && s.Ready
}

// Report is a full cluster health snapshot.
type Report struct {
	Nodes      []NodeStatus
	API        APIStatus
	Components []ComponentStatus
}

// Healthy reports whether every probe passed: all node services active, the
// API server answering with every configured node Ready, and all component
// deployments rolled out.
func (r *Report) Healthy() bool {
	for _, node := range r.Nodes {
		if !node.Healthy() {
			return false
		}
	}

	if r.API.Err != nil || r.API.ReadyNodes < len(r.Nodes) {
		return false
	}

	for _, component := range r.Components {
		if !component.Healthy() {
			return false
		}
	}

	return true
}

// Status probes every node over SSH, the API server, and the component
// deployments. Probe failures land in the report rather than the returned
// error, so a half-broken cluster still yields a full picture.
func (o *Orchestrator) Status(ctx context.Context) (*Report, error) {
	err := o.cluster.Spec.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate cluster configuration: %w", err)
	}

	report := &Report{
		Nodes: o.probeNodes(ctx),
	}

	clients := o.probeAPI(ctx, &report.API)
	if clients != nil {
		report.Components = o.probeComponents(ctx, clients)
	}

	return report, nil
}

// probeNodes checks the K3s unit on every node in parallel. Results keep the
// configured node order.
func (o *Orchestrator) probeNodes(ctx context.Context) []NodeStatus {
	spec := o.cluster.Spec

	statuses := make([]NodeStatus, len(spec.Nodes))
	tasks := make([]parallel.Task, 0, len(spec.Nodes))

	for i, node := range spec.Nodes {
		tasks = append(tasks, func(taskCtx context.Context) error {
			statuses[i] = o.probeNode(taskCtx, node)

			return nil
		})
	}

	// Each task writes its own slot, and probe errors live in the statuses,
	// so Execute only fails on cancellation.
	_ = o.deps.Executor.Execute(ctx, tasks...)

	return statuses
}

// probeNode dials one node and reads its unit state.
func (o *Orchestrator) probeNode(ctx context.Context, node v1alpha1.Node) NodeStatus {
	status := NodeStatus{
		Node:    node,
		Service: k3sinstaller.ServiceNameForRole(node.Role),
	}

	session, err := o.deps.ConnectNode(ctx, nodeSSHConfig(o.cluster.Spec, node))
	if err != nil {
		status.State = "unreachable"
		status.Err = err

		return status
	}

	defer func() { _ = session.Close() }()

	status.State = k3sinstaller.ServiceState(ctx, session, status.Service)

	return status
}

// probeAPI fills in the API server status and returns the clients when the
// cluster is reachable.
func (o *Orchestrator) probeAPI(ctx context.Context, status *APIStatus) *Clients {
	path, err := KubeconfigPath(o.cluster.Spec)
	if err != nil {
		status.Err = err

		return nil
	}

	clients, err := o.deps.NewClients(path, ContextName(o.cluster.Spec))
	if err != nil {
		status.Err = err

		return nil
	}

	version, err := clients.Clientset.Discovery().ServerVersion()
	if err != nil {
		status.Err = fmt.Errorf("query server version: %w", err)

		return nil
	}

	status.Version = version.GitVersion

	nodes, err := clients.Clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		status.Err = fmt.Errorf("list nodes: %w", err)

		return clients
	}

	status.TotalNodes = len(nodes.Items)

	for i := range nodes.Items {
		if readiness.NodeReady(&nodes.Items[i]) {
			status.ReadyNodes++
		}
	}

	status.Architectures = labels.UniqueValues(nodes.Items, corev1.LabelArchStable,
		func(node corev1.Node) map[string]string { return node.Labels })

	return clients
}

// probeComponents checks the enabled components' deployments.
func (o *Orchestrator) probeComponents(ctx context.Context, clients *Clients) []ComponentStatus {
	spec := o.cluster.Spec

	var statuses []ComponentStatus

	if spec.CertManager.Enabled {
		for _, name := range certmanagerinstaller.Deployments() {
			statuses = append(statuses, o.probeDeployment(
				ctx, clients, "cert-manager", certmanagerinstaller.Namespace, name,
			))
		}
	}

	if spec.Rancher.Enabled {
		statuses = append(statuses, o.probeDeployment(
			ctx, clients, "rancher", rancherinstaller.Namespace, rancherinstaller.DeploymentName,
		))
	}

	return statuses
}

// probeDeployment reads one deployment's rollout state.
func (o *Orchestrator) probeDeployment(
	ctx context.Context,
	clients *Clients,
	component, namespace, name string,
) ComponentStatus {
	status := ComponentStatus{
		Component:  component,
		Namespace:  namespace,
		Deployment: name,
	}

	deployment, err := clients.Clientset.AppsV1().
		Deployments(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		status.Err = err

		return status
	}

	status.Ready = readiness.DeploymentReady(deployment)
	if !status.Ready {
		status.FailingPods = k8s.FailingPods(ctx, clients.Clientset, namespace)
	}

	return status
}
