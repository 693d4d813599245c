// Package infra contains commands that drive the terraform definitions living
// alongside a kroft project.
package infra

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/client/terraform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// DefaultInfraDir is the terraform module directory relative to the project
// root.
const DefaultInfraDir = "terraform"

// NewInfraCmd creates the infra command group.
func NewInfraCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infra",
		Short: "Manage infrastructure with terraform",
		Long: `Group infrastructure commands under a single namespace to plan, apply, or
destroy the terraform definitions next to the cluster configuration.`,
		Args:         cobra.NoArgs,
		RunE:         handleInfraRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewPlanCmd(runtimeContainer))
	cmd.AddCommand(NewApplyCmd(runtimeContainer))
	cmd.AddCommand(NewDestroyCmd(runtimeContainer))

	return cmd
}

func handleInfraRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying infra command help: %w", err)
	}

	return nil
}

//nolint:gochecknoglobals // dependency injection for tests
var (
	runnerFactoryMu       sync.Mutex
	runnerFactoryOverride func(workDir string, writer io.Writer) infraRunner
)

// newRunner returns the terraform runner for the given module directory,
// honoring a test override.
//
//nolint:ireturn // factory returns the test seam interface
func newRunner(workDir string, writer io.Writer) infraRunner {
	runnerFactoryMu.Lock()
	factory := runnerFactoryOverride
	runnerFactoryMu.Unlock()

	if factory != nil {
		return factory(workDir, writer)
	}

	return terraform.NewClient(workDir, writer)
}

// setRunnerFactoryForTests overrides the terraform runner factory and returns
// a restore function.
func setRunnerFactoryForTests(factory func(workDir string, writer io.Writer) infraRunner) func() {
	runnerFactoryMu.Lock()
	previous := runnerFactoryOverride
	runnerFactoryOverride = factory
	runnerFactoryMu.Unlock()

	return func() {
		runnerFactoryMu.Lock()
		runnerFactoryOverride = previous
		runnerFactoryMu.Unlock()
	}
}
