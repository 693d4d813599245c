package dev

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/lifecycle"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	clusterprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster"
)

// NewDeleteCmd creates the dev delete command.
func NewDeleteCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a local dev cluster",
		Long: `Delete a local development cluster. Fails when no cluster with the
configured name exists.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(
		cmd,
		kroftconfigmanager.DefaultDevFieldSelectors(),
	)

	cmd.RunE = lifecycle.NewStandardRunE(runtimeContainer, cfgManager, lifecycle.Config{
		TitleEmoji:         "🔥",
		TitleContent:       "Delete dev cluster...",
		ActivityContent:    "deleting dev cluster",
		SuccessContent:     "dev cluster deleted",
		ErrorMessagePrefix: "failed to delete dev cluster",
		Action: func(
			ctx context.Context,
			provisioner clusterprovisioner.ClusterProvisioner,
			clusterName string,
		) error {
			return provisioner.Delete(ctx, clusterName)
		},
	})

	return cmd
}
