package infra

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/client/terraform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// ErrNotADirectory indicates the terraform module path is a file.
var ErrNotADirectory = errors.New("terraform module path is not a directory")

// infraRunner is the subset of the terraform client the infra commands use.
// *terraform.Client satisfies it.
type infraRunner interface {
	Plan(ctx context.Context, opts terraform.Options) error
	Apply(ctx context.Context, opts terraform.Options) error
	Destroy(ctx context.Context, opts terraform.Options) error
}

// infraOptions holds the flag values shared by all infra subcommands.
type infraOptions struct {
	dir      string
	varFiles []string
	vars     map[string]string
}

// infraAction describes one terraform verb exposed as a subcommand.
type infraAction struct {
	use     string
	short   string
	long    string
	emoji   string
	title   string
	success string
	run     func(ctx context.Context, runner infraRunner, opts terraform.Options) error
}

// newInfraActionCmd builds the cobra command for a terraform verb. All verbs
// share the same flags and run flow, only the action differs.
func newInfraActionCmd(runtimeContainer *runtime.Runtime, action infraAction) *cobra.Command {
	opts := &infraOptions{}

	cmd := &cobra.Command{
		Use:          action.use,
		Short:        action.short,
		Long:         action.long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(
		&opts.dir, "dir", DefaultInfraDir,
		"Directory containing the terraform module",
	)
	cmd.Flags().StringSliceVar(
		&opts.varFiles, "var-file", nil,
		"Terraform variable files to pass through",
	)
	cmd.Flags().StringToStringVar(
		&opts.vars, "var", nil,
		"Terraform variables as key=value pairs",
	)

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleInfraActionRunE(cmd, action, opts, tmr)
		}),
	)

	return cmd
}

func handleInfraActionRunE(
	cmd *cobra.Command,
	action infraAction,
	opts *infraOptions,
	tmr timer.Timer,
) error {
	if tmr != nil {
		tmr.Start()
	}

	notify.Titlef(cmd.OutOrStdout(), action.emoji, "%s", action.title)

	info, err := os.Stat(opts.dir)
	if err != nil {
		return fmt.Errorf("failed to access terraform directory '%s': %w", opts.dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: '%s'", ErrNotADirectory, opts.dir)
	}

	runner := newRunner(opts.dir, cmd.OutOrStdout())

	err = action.run(cmd.Context(), runner, terraform.Options{
		VarFiles: opts.varFiles,
		Vars:     opts.vars,
	})
	if err != nil {
		return fmt.Errorf("failed to %s infrastructure: %w", action.use, err)
	}

	notify.SuccessWithTimerf(cmd.OutOrStdout(), helpers.MaybeTimer(cmd, tmr), "%s", action.success)

	return nil
}
