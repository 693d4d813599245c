package dev

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/lifecycle"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
)

// NewListCmd creates the dev list command.
func NewListCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local dev clusters",
		Long: `List the local development clusters the configured distribution knows about,
one name per line.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(
		cmd,
		kroftconfigmanager.DefaultDevFieldSelectors(),
	)

	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleListRunE)

	return cmd
}

// handleListRunE prints names only, so the output stays pipeable.
func handleListRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	deps lifecycle.Deps,
) error {
	provisioner, err := deps.Factory.Create(cfgManager.Config)
	if err != nil {
		return fmt.Errorf("failed to resolve cluster provisioner: %w", err)
	}

	if provisioner == nil {
		return lifecycle.ErrMissingClusterProvisionerDependency
	}

	clusters, err := provisioner.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list dev clusters: %w", err)
	}

	if len(clusters) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No dev clusters found.")

		return nil
	}

	for _, name := range clusters {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
	}

	return nil
}
