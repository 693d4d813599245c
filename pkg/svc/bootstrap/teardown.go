package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/k8s"
	"github.com/kroft-dev/kroft/pkg/parallel"
	"github.com/kroft-dev/kroft/pkg/svc/installer"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

// TeardownOptions selects which teardown steps run.
type TeardownOptions struct {
	// SkipComponents leaves the in-cluster components (Fleet, Rancher,
	// cert-manager) in place.
	SkipComponents bool
	// SkipUninstall leaves K3s running on the nodes. Only local state is
	// cleaned up.
	SkipUninstall bool
}

// Teardown dismantles the cluster in reverse bootstrap order: component
// uninstalls, K3s uninstalls on every node, then the local kubeconfig
// entries. Every step is best-effort; failures are reported as warnings and
// collected into the returned error instead of stopping later steps.
func (o *Orchestrator) Teardown(ctx context.Context, opts TeardownOptions) error {
	err := o.cluster.Spec.Validate()
	if err != nil {
		return fmt.Errorf("validate cluster configuration: %w", err)
	}

	o.tmr.Start()

	spec := o.cluster.Spec

	notify.Titlef(o.out, "🧹", "Tearing down cluster '%s'", spec.Name)

	var problems []error

	report := func(step string, stepErr error) {
		if stepErr == nil {
			return
		}

		notify.Warningf(o.out, "%s: %v", step, stepErr)
		problems = append(problems, fmt.Errorf("%s: %w", step, stepErr))
	}

	if !opts.SkipComponents {
		o.uninstallComponents(ctx, report)
	}

	if !opts.SkipUninstall {
		o.uninstallNodes(ctx, report)
	}

	report("clean up kubeconfig", o.cleanupKubeconfig())

	if len(problems) > 0 {
		notify.Warningf(o.out, "teardown finished with %d problem(s)", len(problems))

		return fmt.Errorf("teardown: %w", errors.Join(problems...))
	}

	notify.SuccessWithTimerf(o.out, o.tmr, "cluster '%s' torn down", spec.Name)

	return nil
}

// uninstallComponents removes the installed components in reverse dependency
// order. An unreachable cluster skips the whole step with a single warning,
// teardown of the nodes still proceeds.
func (o *Orchestrator) uninstallComponents(ctx context.Context, report func(string, error)) {
	o.tmr.NewStage()

	path, err := KubeconfigPath(o.cluster.Spec)
	if err != nil {
		report("resolve kubeconfig path", err)

		return
	}

	clients, err := o.deps.NewClients(path, ContextName(o.cluster.Spec))
	if err != nil {
		report("connect to cluster", err)

		return
	}

	installers := o.deps.NewInstallers(clients)

	order := slices.Clone(installer.InstallOrder())
	slices.Reverse(order)

	for _, name := range order {
		componentInstaller, enabled := installers[name]
		if !enabled {
			continue
		}

		notify.Activityf(o.out, "uninstalling %s", name)
		report("uninstall "+name, componentInstaller.Uninstall(ctx))
	}
}

// uninstallNodes runs the K3s uninstall scripts on every node, workers in
// parallel before the master so agents drain while the server still answers.
func (o *Orchestrator) uninstallNodes(ctx context.Context, report func(string, error)) {
	o.tmr.NewStage()

	spec := o.cluster.Spec
	workers := spec.Workers()

	failures := parallel.NewErrorList()

	tasks := make([]parallel.Task, 0, len(workers))

	for _, worker := range workers {
		tasks = append(tasks, func(taskCtx context.Context) error {
			uninstallErr := o.uninstallNode(taskCtx, worker, false)
			if uninstallErr != nil {
				failures.Add(fmt.Errorf("uninstall agent on '%s': %w", worker.Name, uninstallErr))

				return nil
			}

			notify.Activityf(o.out, "node '%s' cleaned", worker.Name)

			return nil
		})
	}

	// Tasks swallow their own errors into the list, so Execute only fails on
	// context cancellation.
	execErr := o.deps.Executor.Execute(ctx, tasks...)
	if execErr != nil {
		report("uninstall agents", execErr)
	}

	for _, uninstallErr := range failures.All() {
		report("uninstall agents", uninstallErr)
	}

	master, ok := spec.Master()
	if !ok {
		return
	}

	err := o.uninstallNode(ctx, *master, true)
	if err != nil {
		report(fmt.Sprintf("uninstall server on '%s'", master.Name), err)

		return
	}

	notify.Activityf(o.out, "node '%s' cleaned", master.Name)
}

// uninstallNode connects to one node and runs the matching uninstall script.
func (o *Orchestrator) uninstallNode(
	ctx context.Context,
	node v1alpha1.Node,
	isServer bool,
) error {
	session, err := o.deps.ConnectNode(ctx, nodeSSHConfig(o.cluster.Spec, node))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	defer func() { _ = session.Close() }()

	if isServer {
		return o.deps.K3s.UninstallServer(ctx, session)
	}

	return o.deps.K3s.UninstallAgent(ctx, session)
}

// cleanupKubeconfig removes the cluster's kubeconfig entries so a later
// bootstrap does not inherit stale credentials.
func (o *Orchestrator) cleanupKubeconfig() error {
	path, err := KubeconfigPath(o.cluster.Spec)
	if err != nil {
		return err
	}

	name := ContextName(o.cluster.Spec)

	return k8s.CleanupKubeconfig(path, name, name, name, o.out)
}
