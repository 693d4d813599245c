package workload

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/client/kubeconform"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	configmanagerinterface "github.com/kroft-dev/kroft/pkg/io/config-manager"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// ErrValidationFailed indicates at least one manifest failed validation.
var ErrValidationFailed = errors.New("workload validation failed")

// ErrNotADirectory indicates the configured workload source is a file.
var ErrNotADirectory = errors.New("workload source is not a directory")

// validateOptions configures the kubeconform run.
type validateOptions struct {
	skipSecrets          bool
	strict               bool
	ignoreMissingSchemas bool
	kubernetesVersion    string
	schemaLocations      []string
}

// NewValidateCmd creates the workload validate command.
func NewValidateCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate workload manifests with kubeconform",
		Long: `Validate every manifest in the workload source directory against its
Kubernetes OpenAPI schema. Secrets are skipped by default so encrypted fields
do not trip the schema check.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	registerValidateFlags(cmd, opts)

	cfgManager := kroftconfigmanager.NewCommandConfigManager(
		cmd,
		[]kroftconfigmanager.FieldSelector[v1alpha1.Cluster]{
			kroftconfigmanager.DefaultSourceDirectoryFieldSelector(),
		},
	)

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleValidateRunE(cmd, cfgManager, opts, tmr)
		}),
	)

	return cmd
}

func registerValidateFlags(cmd *cobra.Command, opts *validateOptions) {
	cmd.Flags().BoolVar(
		&opts.skipSecrets, "skip-secrets", true,
		"Skip validation of Secrets so encrypted fields pass",
	)
	cmd.Flags().BoolVar(&opts.strict, "strict", true, "Reject manifests with unknown fields")
	cmd.Flags().BoolVar(
		&opts.ignoreMissingSchemas, "ignore-missing-schemas", true,
		"Tolerate resources without a published schema, such as CRDs",
	)
	cmd.Flags().StringVar(
		&opts.kubernetesVersion, "kubernetes-version", "",
		"Kubernetes version to validate against (defaults to master)",
	)
	cmd.Flags().StringSliceVar(
		&opts.schemaLocations, "schema-location", nil,
		"Override schema locations (kubeconform location syntax)",
	)
}

func handleValidateRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	opts *validateOptions,
	tmr timer.Timer,
) error {
	if tmr != nil {
		tmr.Start()
	}

	// Validation only needs the source directory, not the node topology.
	cfg, err := cfgManager.Load(configmanagerinterface.LoadOptions{
		SkipValidation: true,
		Timer:          helpers.MaybeTimer(cmd, tmr),
	})
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	notify.Titlef(cmd.OutOrStdout(), "🔍", "Validate workloads...")

	sourceDir, err := resolveSourceDirectory(cfg.Spec)
	if err != nil {
		return err
	}

	notify.Activityf(cmd.OutOrStdout(), "validating manifests in '%s'", sourceDir)

	err = runValidation(cmd, sourceDir, opts)
	if err != nil {
		return err
	}

	notify.SuccessWithTimerf(
		cmd.OutOrStdout(),
		helpers.MaybeTimer(cmd, tmr),
		"workloads in '%s' are valid",
		sourceDir,
	)

	return nil
}

// runValidation validates every manifest under sourceDir and reports each
// invalid resource before failing.
func runValidation(cmd *cobra.Command, sourceDir string, opts *validateOptions) error {
	validationOpts := &kubeconform.ValidationOptions{
		Strict:               opts.strict,
		IgnoreMissingSchemas: opts.ignoreMissingSchemas,
		SchemaLocations:      opts.schemaLocations,
		KubernetesVersion:    opts.kubernetesVersion,
	}
	if opts.skipSecrets {
		validationOpts.SkipKinds = append(validationOpts.SkipKinds, "Secret")
	}

	findings, err := kubeconform.NewClient().ValidateDirectory(sourceDir, validationOpts)
	if err != nil {
		return fmt.Errorf("failed to validate workloads: %w", err)
	}

	for _, finding := range findings {
		notify.Errorf(cmd.OutOrStdout(), "%s", finding)
	}

	if len(findings) > 0 {
		return fmt.Errorf("%w: %d invalid resource(s)", ErrValidationFailed, len(findings))
	}

	return nil
}

func resolveSourceDirectory(spec v1alpha1.Spec) (string, error) {
	dir := spec.Workload.SourceDirectory

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to access workload directory '%s': %w", dir, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: '%s'", ErrNotADirectory, dir)
	}

	return dir, nil
}
