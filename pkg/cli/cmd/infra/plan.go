package infra

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/client/terraform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewPlanCmd creates the infra plan command.
func NewPlanCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	return newInfraActionCmd(runtimeContainer, infraAction{
		use:   "plan",
		short: "Preview infrastructure changes",
		long: `Run terraform plan against the module directory. The module is initialized
first when it has not been initialized yet.`,
		emoji:   "📋",
		title:   "Plan infrastructure...",
		success: "plan complete",
		run: func(ctx context.Context, runner infraRunner, opts terraform.Options) error {
			return runner.Plan(ctx, opts)
		},
	})
}
