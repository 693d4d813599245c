package node

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	cloudinitgenerator "github.com/kroft-dev/kroft/pkg/io/generator/cloudinit"
	yamlgenerator "github.com/kroft-dev/kroft/pkg/io/generator/yaml"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// NewPrepareCmd creates the node prepare command. It renders the cloud-init
// provisioning trio for every node in the cluster configuration.
func NewPrepareCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Generate cloud-init files for all nodes",
		Long: `Generate the NoCloud provisioning files (user-data, meta-data,
network-config) for every node in the cluster configuration. Each node gets
its own directory under the cloud-init output directory, ready to copy onto
the boot partition of its SD card.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	fieldSelectors := kroftconfigmanager.DefaultNodeFieldSelectors()
	fieldSelectors = append(fieldSelectors, kroftconfigmanager.DefaultCloudInitDirFieldSelector())

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing cloud-init files")

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handlePrepareRunE(cmd, cfgManager, tmr, force)
		}),
	)

	return cmd
}

func handlePrepareRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
	force bool,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := helpers.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	notify.Titlef(cmd.OutOrStdout(), "🧾", "Prepare nodes...")

	generator := cloudinitgenerator.NewCloudInitGenerator()
	outputDir := cfg.Spec.CloudInit.OutputDir

	for _, clusterNode := range cfg.Spec.Nodes {
		nodeDir := filepath.Join(outputDir, clusterNode.Name)

		_, err = generator.Generate(
			cloudinitgenerator.Model{Spec: &cfg.Spec, Node: clusterNode},
			yamlgenerator.Options{Output: nodeDir, Force: force},
		)
		if err != nil {
			return fmt.Errorf("failed to generate cloud-init for node '%s': %w", clusterNode.Name, err)
		}

		notify.Generatef(cmd.OutOrStdout(), "'%s' provisioning files written to %s", clusterNode.Name, nodeDir)
	}

	notify.SuccessWithTimerf(
		cmd.OutOrStdout(),
		helpers.MaybeTimer(cmd, tmr),
		"cloud-init files ready for %d node(s)",
		len(cfg.Spec.Nodes),
	)

	return nil
}
