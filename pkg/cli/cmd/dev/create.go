package dev

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/lifecycle"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	clusterprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster"
)

// NewCreateCmd creates the dev create command.
func NewCreateCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a local dev cluster",
		Long: `Create a local development cluster with the configured distribution (kind or
k3d). The Docker engine must be running.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(
		cmd,
		kroftconfigmanager.DefaultDevFieldSelectors(),
	)

	cmd.RunE = lifecycle.NewStandardRunE(runtimeContainer, cfgManager, lifecycle.Config{
		TitleEmoji:         "🚀",
		TitleContent:       "Create dev cluster...",
		ActivityContent:    "creating dev cluster",
		SuccessContent:     "dev cluster created",
		ErrorMessagePrefix: "failed to create dev cluster",
		Action: func(
			ctx context.Context,
			provisioner clusterprovisioner.ClusterProvisioner,
			clusterName string,
		) error {
			return provisioner.Create(ctx, clusterName)
		},
	})

	return cmd
}
