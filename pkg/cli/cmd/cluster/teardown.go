package cluster

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/cli/ui/confirm"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// teardownOptions holds the flag values of the cluster teardown command.
type teardownOptions struct {
	skipComponents bool
	skipUninstall  bool
	force          bool
}

// NewTeardownCmd creates the cluster teardown command. It dismantles the
// cluster in reverse bootstrap order.
func NewTeardownCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	opts := &teardownOptions{}

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Tear down the cluster",
		Long: `Tear down the K3s cluster: uninstall the in-cluster components, run the
K3s uninstall scripts on every node over SSH, and remove the cluster's
kubeconfig entries.

Every step is best-effort. Failures are reported as warnings and later steps
still run, so a half-broken cluster can be dismantled.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, clusterFieldSelectors())

	cmd.Flags().BoolVar(&opts.skipComponents, "skip-components", false,
		"Leave the in-cluster components (Fleet, Rancher, cert-manager) in place")
	cmd.Flags().BoolVar(&opts.skipUninstall, "skip-uninstall", false,
		"Leave K3s running on the nodes and only clean up local state")
	cmd.Flags().BoolVar(&opts.force, "force", false,
		"Skip the confirmation prompt")

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleTeardownRunE(cmd, cfgManager, tmr, opts)
		}),
	)

	return cmd
}

func handleTeardownRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
	opts *teardownOptions,
) error {
	if tmr != nil {
		tmr.Start()
	}

	cfg, err := cfgManager.LoadConfig(helpers.MaybeTimer(cmd, tmr))
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	if !confirm.ShouldSkipPrompt(opts.force) {
		confirm.ShowTeardownPreview(cmd.OutOrStdout(), &confirm.TeardownPreview{
			ClusterName: cfg.Spec.Name,
			Nodes:       cfg.Spec.Nodes,
		})

		if !confirm.PromptForConfirmation(cmd.OutOrStdout()) {
			return confirm.ErrTeardownCancelled
		}
	}

	orch := newOrchestrator(cfg, cmd.OutOrStdout(), bootstrap.Options{})

	err = orch.Teardown(cmd.Context(), bootstrap.TeardownOptions{
		SkipComponents: opts.skipComponents,
		SkipUninstall:  opts.skipUninstall,
	})
	if err != nil {
		return fmt.Errorf("failed to tear down cluster: %w", err)
	}

	return nil
}
