package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/io/scaffolder"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// NewInitCmd creates the init command that scaffolds a new kroft project.
func NewInitCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	var (
		force        bool
		ageRecipient string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new kroft project",
		Long: `Scaffold the files a kroft project starts from: a kroft.yaml cluster
configuration, a kustomization.yaml in the workload source directory, and a
.sops.yaml when an age recipient is provided.

Existing files are left untouched unless --force is set.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	fieldSelectors := kroftconfigmanager.DefaultClusterFieldSelectors()
	fieldSelectors = append(fieldSelectors, kroftconfigmanager.DefaultNodeFieldSelectors()...)
	fieldSelectors = append(fieldSelectors, kroftconfigmanager.DefaultSourceDirectoryFieldSelector())
	fieldSelectors = append(fieldSelectors, kroftconfigmanager.DefaultK3sChannelFieldSelector())

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().StringVar(
		&ageRecipient,
		"age-recipient",
		"",
		"Age public key written to the generated .sops.yaml",
	)
	cmd.Flags().StringVarP(&output, "output", "o", ".", "Directory to scaffold the project into")

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleInitRunE(cmd, cfgManager, tmr, output, force, ageRecipient)
		}),
	)

	return cmd
}

func handleInitRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
	output string,
	force bool,
	ageRecipient string,
) error {
	if tmr != nil {
		tmr.Start()
	}

	// The project file is being created here, so only flags and defaults
	// feed the scaffolded configuration.
	cfg, err := cfgManager.LoadConfigFromFlagsOnly()
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	notify.Titlef(cmd.OutOrStdout(), "📂", "Initialize project...")

	projectScaffolder := scaffolder.NewScaffolder(*cfg, cmd.OutOrStdout(), ageRecipient)

	err = projectScaffolder.Scaffold(output, force)
	if err != nil {
		return fmt.Errorf("failed to scaffold project: %w", err)
	}

	notify.SuccessWithTimerf(
		cmd.OutOrStdout(),
		helpers.MaybeTimer(cmd, tmr),
		"project initialized",
	)

	return nil
}
