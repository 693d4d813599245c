package cluster

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/client/k9s"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	configmanagerinterface "github.com/kroft-dev/kroft/pkg/io/config-manager"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
)

// NewConnectCmd creates the cluster connect command. It opens k9s against the
// cluster's kubeconfig context.
func NewConnectCmd(_ *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to the cluster with k9s",
		Long: `Launch the k9s terminal UI against the cluster's kubeconfig context.

All k9s flags and arguments are passed through unchanged. Examples:

  kroft cluster connect
  kroft cluster connect --namespace cattle-system
  kroft cluster connect --readonly`,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(
		cmd,
		kroftconfigmanager.DefaultClusterFieldSelectors(),
	)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return handleConnectRunE(cmd, cfgManager, args)
	}

	return cmd
}

func handleConnectRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	args []string,
) error {
	// Connect only needs the connection settings, not the node topology.
	cfg, err := cfgManager.Load(configmanagerinterface.LoadOptions{
		Silent:         true,
		SkipValidation: true,
	})
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	kubeconfigPath, err := bootstrap.KubeconfigPath(cfg.Spec)
	if err != nil {
		return fmt.Errorf("failed to resolve kubeconfig path: %w", err)
	}

	k9sCmd := k9s.NewClient().CreateConnectCommand(kubeconfigPath, bootstrap.ContextName(cfg.Spec))
	k9sCmd.SetContext(cmd.Context())
	k9sCmd.SetArgs(args)
	k9sCmd.SetOut(cmd.OutOrStdout())
	k9sCmd.SetErr(cmd.ErrOrStderr())

	err = k9sCmd.Execute()
	if err != nil {
		return fmt.Errorf("failed to execute k9s: %w", err)
	}

	return nil
}
