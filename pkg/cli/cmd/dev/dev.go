// Package dev contains commands that manage local development clusters.
//
// Dev clusters mirror the homelab's K3s workloads on a workstation through
// kind or k3d, so manifests can be exercised without touching the physical
// nodes.
package dev

import (
	"fmt"

	"github.com/spf13/cobra"

	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewDevCmd creates the dev command group.
func NewDevCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Manage local development clusters",
		Long: `Group dev commands under a single namespace to create, delete, or list local
development clusters backed by kind or k3d.`,
		Args:         cobra.NoArgs,
		RunE:         handleDevRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewCreateCmd(runtimeContainer))
	cmd.AddCommand(NewDeleteCmd(runtimeContainer))
	cmd.AddCommand(NewListCmd(runtimeContainer))

	return cmd
}

func handleDevRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying dev command help: %w", err)
	}

	return nil
}
