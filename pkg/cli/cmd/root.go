package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/cmd/cipher"
	"github.com/kroft-dev/kroft/pkg/cli/cmd/cluster"
	"github.com/kroft-dev/kroft/pkg/cli/cmd/dev"
	"github.com/kroft-dev/kroft/pkg/cli/cmd/infra"
	"github.com/kroft-dev/kroft/pkg/cli/cmd/node"
	"github.com/kroft-dev/kroft/pkg/cli/cmd/workload"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/cli/ui/asciiart"
	"github.com/kroft-dev/kroft/pkg/cli/ui/errorhandler"
	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewRootCmd builds the kroft root command, wiring the shared runtime
// container into every command group.
func NewRootCmd(version, commit, date string) *cobra.Command {
	container := runtime.NewRuntime()

	cmd := &cobra.Command{
		Use:          "kroft",
		Short:        "Kroft is a CLI tool for provisioning and maintaining Raspberry Pi K3s homelabs",
		Long:         "Kroft is a CLI tool for provisioning and maintaining Raspberry Pi K3s homelabs",
		Version:      fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit),
		RunE:         runRoot,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool(helpers.TimingFlagName, false, "Print how long each activity took")

	cmd.AddCommand(NewInitCmd(container))
	cmd.AddCommand(node.NewNodeCmd(container))
	cmd.AddCommand(cluster.NewClusterCmd(container))
	cmd.AddCommand(workload.NewWorkloadCmd(container))
	cmd.AddCommand(infra.NewInfraCmd(container))
	cmd.AddCommand(dev.NewDevCmd(container))
	cmd.AddCommand(cipher.NewCipherCmd(container))

	return cmd
}

// Execute runs the root command through the error handler, which folds
// Cobra's stderr chatter into the returned error.
func Execute(cmd *cobra.Command) error {
	err := errorhandler.Run(cmd)
	if err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}

// runRoot prints the logo and the top level help when kroft is invoked
// without a subcommand.
func runRoot(cmd *cobra.Command, _ []string) error {
	asciiart.PrintKroftLogo(cmd.OutOrStdout())

	// Help on a fully assembled command cannot fail.
	_ = cmd.Help()

	return nil
}
