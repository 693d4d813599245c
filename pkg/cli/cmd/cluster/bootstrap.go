package cluster

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/cli/ui/confirm"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	"github.com/kroft-dev/kroft/pkg/fsutil"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
	rancherinstaller "github.com/kroft-dev/kroft/pkg/svc/installer/rancher"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// NewBootstrapCmd creates the cluster bootstrap command. It takes the cluster
// from bare nodes to running components.
func NewBootstrapCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	var ageKeyFile string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap the cluster from bare nodes",
		Long: `Bootstrap the K3s cluster: wait for SSH on all nodes, install the K3s
server on the master, fetch the kubeconfig, join the workers, and install the
enabled components (cert-manager, Rancher, Fleet).

Bootstrap is idempotent. A failed run aborts at the failing stage and leaves
completed work in place, so re-running continues where it stopped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	fieldSelectors := clusterFieldSelectors()
	fieldSelectors = append(
		fieldSelectors,
		kroftconfigmanager.DefaultK3sChannelFieldSelector(),
		kroftconfigmanager.DefaultK3sVersionFieldSelector(),
	)

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().StringVar(
		&ageKeyFile,
		"age-key-file",
		"",
		"Path to an age key file stored as the sops-age secret for Fleet decryption",
	)

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleBootstrapRunE(cmd, cfgManager, tmr, ageKeyFile)
		}),
	)

	return cmd
}

func handleBootstrapRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
	ageKeyFile string,
) error {
	if tmr != nil {
		tmr.Start()
	}

	cfg, err := cfgManager.LoadConfig(helpers.MaybeTimer(cmd, tmr))
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	opts, err := resolveBootstrapOptions(cmd, cfg, ageKeyFile)
	if err != nil {
		return err
	}

	orch := newOrchestrator(cfg, cmd.OutOrStdout(), opts)

	err = orch.Bootstrap(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to bootstrap cluster: %w", err)
	}

	return nil
}

// resolveBootstrapOptions gathers the secrets bootstrap needs before any node
// is touched: the Rancher bootstrap password and the Fleet age key.
func resolveBootstrapOptions(
	cmd *cobra.Command,
	cfg *v1alpha1.Cluster,
	ageKeyFile string,
) (bootstrap.Options, error) {
	password, err := rancherinstaller.ResolveBootstrapPassword(cfg.Spec.Rancher)
	if err != nil {
		return bootstrap.Options{}, fmt.Errorf("failed to resolve bootstrap password: %w", err)
	}

	if password == "" && cfg.Spec.Rancher.Enabled && confirm.IsTTY() {
		password = promptBootstrapPassword(cmd)
	}

	var ageKey []byte

	if ageKeyFile != "" {
		ageKey, err = fsutil.ReadFileSafe(ageKeyFile)
		if err != nil {
			return bootstrap.Options{}, fmt.Errorf("failed to read age key file: %w", err)
		}
	}

	return bootstrap.Options{
		BootstrapPassword: password,
		AgeKey:            ageKey,
	}, nil
}

// promptBootstrapPassword reads the Rancher bootstrap password without echo.
// Prompt failures fall back to letting the chart generate a password.
func promptBootstrapPassword(cmd *cobra.Command) string {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Rancher bootstrap password (empty lets the chart generate one): ")

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))

	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	if err != nil {
		notify.Warningf(cmd.OutOrStdout(), "could not read password interactively, the chart will generate one")

		return ""
	}

	return strings.TrimSpace(string(raw))
}
