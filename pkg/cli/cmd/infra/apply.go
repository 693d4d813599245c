package infra

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/client/terraform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewApplyCmd creates the infra apply command.
func NewApplyCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	return newInfraActionCmd(runtimeContainer, infraAction{
		use:   "apply",
		short: "Apply infrastructure changes",
		long: `Run terraform apply -auto-approve against the module directory. The module
is initialized first when it has not been initialized yet.`,
		emoji:   "🏗️",
		title:   "Apply infrastructure...",
		success: "infrastructure applied",
		run: func(ctx context.Context, runner infraRunner, opts terraform.Options) error {
			return runner.Apply(ctx, opts)
		},
	})
}
