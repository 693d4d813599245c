package infra

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/client/terraform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewDestroyCmd creates the infra destroy command.
func NewDestroyCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	return newInfraActionCmd(runtimeContainer, infraAction{
		use:   "destroy",
		short: "Destroy managed infrastructure",
		long: `Run terraform destroy -auto-approve against the module directory. The module
is initialized first when it has not been initialized yet.`,
		emoji:   "🧨",
		title:   "Destroy infrastructure...",
		success: "infrastructure destroyed",
		run: func(ctx context.Context, runner infraRunner, opts terraform.Options) error {
			return runner.Destroy(ctx, opts)
		},
	})
}
