package cluster

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// NewKubeconfigCmd creates the cluster kubeconfig command. It refreshes the
// local kubeconfig from the master node.
func NewKubeconfigCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kubeconfig",
		Short: "Fetch the cluster kubeconfig from the master node",
		Long: `Fetch the admin kubeconfig from the master node over SSH, rewrite it to
point at the node's address, and merge it into the local kubeconfig. Useful
after reprovisioning or when access was lost.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, clusterFieldSelectors())

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleKubeconfigRunE(cmd, cfgManager, tmr)
		}),
	)

	return cmd
}

func handleKubeconfigRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
) error {
	if tmr != nil {
		tmr.Start()
	}

	cfg, err := cfgManager.LoadConfig(helpers.MaybeTimer(cmd, tmr))
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	notify.Titlef(cmd.OutOrStdout(), "🔑", "Fetch kubeconfig...")

	orch := newOrchestrator(cfg, cmd.OutOrStdout(), bootstrap.Options{})

	path, err := orch.FetchKubeconfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch kubeconfig: %w", err)
	}

	notify.SuccessWithTimerf(
		cmd.OutOrStdout(),
		helpers.MaybeTimer(cmd, tmr),
		"kubeconfig ready, context '%s' in %s",
		bootstrap.ContextName(cfg.Spec),
		path,
	)

	return nil
}
