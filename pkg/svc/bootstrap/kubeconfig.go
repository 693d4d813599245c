package bootstrap

import (
	"context"
	"fmt"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

// FetchKubeconfig pulls the admin kubeconfig off the master node and merges
// it into the local kubeconfig. Unlike bootstrap it does not wait for the API
// server, so it also recovers access to a cluster that is currently degraded.
// Returns the path the kubeconfig was merged into.
func (o *Orchestrator) FetchKubeconfig(ctx context.Context) (string, error) {
	err := o.cluster.Spec.Validate()
	if err != nil {
		return "", fmt.Errorf("validate cluster configuration: %w", err)
	}

	spec := o.cluster.Spec

	master, ok := spec.Master()
	if !ok {
		return "", fmt.Errorf("validate cluster configuration: %w", v1alpha1.ErrNoMasterNode)
	}

	session, err := o.deps.ConnectNode(ctx, nodeSSHConfig(spec, *master))
	if err != nil {
		return "", fmt.Errorf("connect to master '%s': %w", master.Name, err)
	}

	defer func() { _ = session.Close() }()

	raw, err := o.deps.K3s.Kubeconfig(ctx, session, master.Address, ContextName(spec))
	if err != nil {
		return "", fmt.Errorf("fetch kubeconfig: %w", err)
	}

	path, err := KubeconfigPath(spec)
	if err != nil {
		return "", err
	}

	err = k8s.MergeKubeconfig(raw, path)
	if err != nil {
		return "", fmt.Errorf("merge kubeconfig: %w", err)
	}

	notify.Activityf(o.out, "kubeconfig merged into %s", path)

	return path, nil
}
