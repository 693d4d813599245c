package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	configmanagerinterface "github.com/kroft-dev/kroft/pkg/io/config-manager"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	clusterprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// ErrMissingClusterProvisionerDependency indicates that a lifecycle command
// resolved a nil provisioner.
var ErrMissingClusterProvisionerDependency = errors.New("missing cluster provisioner dependency")

// Action represents a lifecycle operation executed against a cluster
// provisioner. The action receives a context for cancellation, the
// provisioner instance, and the dev cluster name.
type Action func(
	ctx context.Context,
	provisioner clusterprovisioner.ClusterProvisioner,
	clusterName string,
) error

// Config describes the messaging and action behavior for a lifecycle command.
type Config struct {
	TitleEmoji         string
	TitleContent       string
	ActivityContent    string
	SuccessContent     string
	ErrorMessagePrefix string
	Action             Action
}

// Deps groups the injectable collaborators required by lifecycle commands.
type Deps struct {
	Timer   timer.Timer
	Factory clusterprovisioner.Factory
}

// NewStandardRunE creates a standard RunE handler for simple lifecycle
// commands. It handles dependency resolution from the runtime container and
// delegates to HandleRunE with the provided lifecycle configuration.
//
// The returned function can be assigned directly to a cobra.Command's RunE
// field.
func NewStandardRunE(
	runtimeContainer *runtime.Runtime,
	cfgManager *kroftconfigmanager.ConfigManager,
	config Config,
) func(*cobra.Command, []string) error {
	return WrapHandler(
		runtimeContainer,
		cfgManager,
		func(cmd *cobra.Command, manager *kroftconfigmanager.ConfigManager, deps Deps) error {
			return HandleRunE(cmd, manager, deps, config)
		},
	)
}

// WrapHandler loads the cluster configuration, resolves the lifecycle
// dependencies from the runtime container, and invokes the provided handler
// with those dependencies.
//
// This function is used internally by NewStandardRunE but can also be used
// directly for custom handlers that need dependency resolution without the
// standard HandleRunE flow.
func WrapHandler(
	runtimeContainer *runtime.Runtime,
	cfgManager *kroftconfigmanager.ConfigManager,
	handler func(*cobra.Command, *kroftconfigmanager.ConfigManager, Deps) error,
) func(*cobra.Command, []string) error {
	return runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(
			func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
				if tmr != nil {
					tmr.Start()
				}

				outputTimer := helpers.MaybeTimer(cmd, tmr)

				// Dev clusters do not need the node topology, so physical
				// cluster validation is skipped here.
				_, err := cfgManager.Load(configmanagerinterface.LoadOptions{
					SkipValidation: true,
					Timer:          outputTimer,
				})
				if err != nil {
					return fmt.Errorf("failed to load cluster configuration: %w", err)
				}

				factory, err := runtime.ResolveClusterProvisionerFactory(injector)
				if err != nil {
					return err
				}

				deps := Deps{Timer: tmr, Factory: factory}

				return handler(cmd, cfgManager, deps)
			},
		),
	)
}

// HandleRunE orchestrates the standard lifecycle workflow using the cluster
// configuration already loaded by WrapHandler.
func HandleRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	deps Deps,
	config Config,
) error {
	if deps.Timer != nil {
		deps.Timer.NewStage()
	}

	return RunWithConfig(cmd, deps, config, cfgManager.Config)
}

// RunWithConfig executes a lifecycle command using a pre-loaded cluster
// configuration. It creates the provisioner through the factory, frames the
// action with title, activity, and success messages, and wraps failures with
// the configured error prefix.
func RunWithConfig(
	cmd *cobra.Command,
	deps Deps,
	config Config,
	clusterCfg *v1alpha1.Cluster,
) error {
	provisioner, err := deps.Factory.Create(clusterCfg)
	if err != nil {
		return fmt.Errorf("failed to resolve cluster provisioner: %w", err)
	}

	if provisioner == nil {
		return ErrMissingClusterProvisionerDependency
	}

	return runAction(cmd, deps, config, provisioner, clusterCfg.Spec.Dev.Name)
}

func runAction(
	cmd *cobra.Command,
	deps Deps,
	config Config,
	provisioner clusterprovisioner.ClusterProvisioner,
	clusterName string,
) error {
	printTitle(cmd, config.TitleEmoji, config.TitleContent)
	notify.Activityf(cmd.OutOrStdout(), "%s", config.ActivityContent)

	err := config.Action(cmd.Context(), provisioner, clusterName)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrorMessagePrefix, err)
	}

	outputTimer := helpers.MaybeTimer(cmd, deps.Timer)

	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: config.SuccessContent,
		Timer:   outputTimer,
		Writer:  cmd.OutOrStdout(),
	})

	return nil
}

// printTitle writes a blank separator line followed by the emoji title.
func printTitle(cmd *cobra.Command, emoji, content string) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: content,
		Emoji:   emoji,
		Writer:  cmd.OutOrStdout(),
	})
}
