// Package workload contains commands that validate and deploy the cluster's
// workload manifests.
package workload

import (
	"fmt"

	"github.com/spf13/cobra"

	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewWorkloadCmd creates the workload command group.
func NewWorkloadCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Validate and deploy workload manifests",
		Long: `Group workload commands under a single namespace to validate the manifest
directory with kubeconform and apply it to the cluster with kubectl.`,
		Args:         cobra.NoArgs,
		RunE:         handleWorkloadRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewApplyCmd(runtimeContainer))
	cmd.AddCommand(NewValidateCmd(runtimeContainer))

	return cmd
}

func handleWorkloadRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying workload command help: %w", err)
	}

	return nil
}
