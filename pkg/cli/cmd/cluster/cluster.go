// Package cluster contains the commands that drive the physical cluster
// lifecycle: bootstrap, teardown, status, kubeconfig, and connect.
package cluster

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
)

// NewClusterCmd creates the parent cluster command and wires the lifecycle
// subcommands beneath it.
func NewClusterCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Bootstrap and operate the physical cluster",
		Long: `Operate the K3s cluster on the physical nodes: bootstrap it from bare
machines, inspect its health, fetch its kubeconfig, connect to it, and tear
it down again.`,
		Args:         cobra.NoArgs,
		RunE:         handleClusterRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewBootstrapCmd(runtimeContainer))
	cmd.AddCommand(NewTeardownCmd(runtimeContainer))
	cmd.AddCommand(NewStatusCmd(runtimeContainer))
	cmd.AddCommand(NewKubeconfigCmd(runtimeContainer))
	cmd.AddCommand(NewConnectCmd(runtimeContainer))

	return cmd
}

func handleClusterRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying cluster command help: %w", err)
	}

	return nil
}

// clusterFieldSelectors returns the field selectors shared by the cluster
// subcommands: the connection settings plus the SSH settings every operation
// reaches the nodes with.
func clusterFieldSelectors() []kroftconfigmanager.FieldSelector[v1alpha1.Cluster] {
	selectors := kroftconfigmanager.DefaultClusterFieldSelectors()
	selectors = append(selectors, kroftconfigmanager.DefaultNodeFieldSelectors()...)

	return selectors
}

// clusterOrchestrator is the orchestrator surface the subcommands drive.
// *bootstrap.Orchestrator satisfies it.
type clusterOrchestrator interface {
	Bootstrap(ctx context.Context) error
	Teardown(ctx context.Context, opts bootstrap.TeardownOptions) error
	Status(ctx context.Context) (*bootstrap.Report, error)
	FetchKubeconfig(ctx context.Context) (string, error)
}

// Test injection for the orchestrator factory.
var (
	//nolint:gochecknoglobals // dependency injection for tests
	orchestratorFactoryMu sync.RWMutex
	//nolint:gochecknoglobals // dependency injection for tests
	orchestratorFactoryOverride func(
		cluster *v1alpha1.Cluster, out io.Writer, opts bootstrap.Options,
	) clusterOrchestrator
)

// newOrchestrator builds the orchestrator for one command run, honoring the
// test override.
//
//nolint:ireturn // the interface keeps the orchestrator swappable in tests
func newOrchestrator(
	cluster *v1alpha1.Cluster,
	out io.Writer,
	opts bootstrap.Options,
) clusterOrchestrator {
	orchestratorFactoryMu.RLock()

	override := orchestratorFactoryOverride

	orchestratorFactoryMu.RUnlock()

	if override != nil {
		return override(cluster, out, opts)
	}

	return bootstrap.NewOrchestrator(cluster, out, opts)
}

// setOrchestratorFactoryForTests overrides the orchestrator factory.
// Returns a restore function that should be called to reset the override.
func setOrchestratorFactoryForTests(
	factory func(cluster *v1alpha1.Cluster, out io.Writer, opts bootstrap.Options) clusterOrchestrator,
) func() {
	orchestratorFactoryMu.Lock()

	previous := orchestratorFactoryOverride
	orchestratorFactoryOverride = factory

	orchestratorFactoryMu.Unlock()

	return func() {
		orchestratorFactoryMu.Lock()

		orchestratorFactoryOverride = previous

		orchestratorFactoryMu.Unlock()
	}
}
