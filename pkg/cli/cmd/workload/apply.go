package workload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericiooptions"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/client/kubectl"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	configmanagerinterface "github.com/kroft-dev/kroft/pkg/io/config-manager"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// kustomizationFileName marks a directory as a kustomization root.
const kustomizationFileName = "kustomization.yaml"

// applyOptions configures the apply flow.
type applyOptions struct {
	validate       validateOptions
	skipValidation bool
	serverSide     bool
}

// NewApplyCmd creates the workload apply command.
func NewApplyCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Validate and apply workload manifests to the cluster",
		Long: `Validate the workload source directory with kubeconform and apply it to the
cluster with kubectl. Directories with a kustomization.yaml are applied as a
kustomization, plain manifest directories recursively file by file.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&opts.skipValidation, "skip-validation", false, "Apply without validating first")
	cmd.Flags().BoolVar(&opts.serverSide, "server-side", true, "Use server-side apply")
	registerValidateFlags(cmd, &opts.validate)

	cfgManager := kroftconfigmanager.NewCommandConfigManager(
		cmd,
		kroftconfigmanager.DefaultWorkloadFieldSelectors(),
	)

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleApplyRunE(cmd, cfgManager, opts, tmr)
		}),
	)

	return cmd
}

func handleApplyRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	opts *applyOptions,
	tmr timer.Timer,
) error {
	if tmr != nil {
		tmr.Start()
	}

	cfg, err := cfgManager.Load(configmanagerinterface.LoadOptions{
		SkipValidation: true,
		Timer:          helpers.MaybeTimer(cmd, tmr),
	})
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	notify.Titlef(cmd.OutOrStdout(), "🚀", "Apply workloads...")

	sourceDir, err := resolveSourceDirectory(cfg.Spec)
	if err != nil {
		return err
	}

	if opts.skipValidation {
		notify.Warningf(cmd.OutOrStdout(), "skipping validation")
	} else {
		notify.Activityf(cmd.OutOrStdout(), "validating manifests in '%s'", sourceDir)

		err = runValidation(cmd, sourceDir, &opts.validate)
		if err != nil {
			return err
		}
	}

	err = applySourceDirectory(cmd, cfg.Spec, sourceDir, opts.serverSide)
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(
		cmd.OutOrStdout(),
		helpers.MaybeTimer(cmd, tmr),
		"workloads applied from '%s'",
		sourceDir,
	)

	return nil
}

func applySourceDirectory(
	cmd *cobra.Command,
	spec v1alpha1.Spec,
	sourceDir string,
	serverSide bool,
) error {
	kubeconfigPath, err := bootstrap.KubeconfigPath(spec)
	if err != nil {
		return fmt.Errorf("failed to resolve kubeconfig path: %w", err)
	}

	client := kubectl.NewClient(genericiooptions.IOStreams{
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	})

	applyCmd := client.CreateApplyCommand(kubeconfigPath)
	applyCmd.SetContext(cmd.Context())
	applyCmd.SetOut(cmd.OutOrStdout())
	applyCmd.SetErr(cmd.ErrOrStderr())
	applyCmd.SetArgs(applyArgs(sourceDir, serverSide))

	notify.Activityf(cmd.OutOrStdout(), "applying '%s' with kubectl", sourceDir)

	err = applyCmd.Execute()
	if err != nil {
		return fmt.Errorf("failed to apply workloads: %w", err)
	}

	return nil
}

func applyArgs(sourceDir string, serverSide bool) []string {
	var args []string

	if hasKustomization(sourceDir) {
		args = append(args, "--kustomize", sourceDir)
	} else {
		args = append(args, "--filename", sourceDir, "--recursive")
	}

	if serverSide {
		args = append(args, "--server-side")
	}

	return args
}

func hasKustomization(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, kustomizationFileName))

	return err == nil
}
