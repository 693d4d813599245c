// Package node contains the commands that provision and configure the
// physical cluster nodes.
package node

import (
	"fmt"

	"github.com/spf13/cobra"

	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewNodeCmd creates the parent node command and wires the provisioning
// subcommands beneath it.
func NewNodeCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Prepare and configure cluster nodes",
		Long: `Manage the physical nodes of the cluster: generate cloud-init ` +
			`provisioning files and run configuration playbooks against them.`,
		Args:         cobra.NoArgs,
		RunE:         handleNodeRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewPrepareCmd(runtimeContainer))
	cmd.AddCommand(NewConfigureCmd(runtimeContainer))

	return cmd
}

func handleNodeRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying node command help: %w", err)
	}

	return nil
}
