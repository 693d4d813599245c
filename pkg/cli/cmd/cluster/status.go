package cluster

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	configmanagerinterface "github.com/kroft-dev/kroft/pkg/io/config-manager"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/svc/bootstrap"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// ErrClusterUnhealthy is returned in quiet mode when any probe fails.
var ErrClusterUnhealthy = errors.New("cluster is not healthy")

// NewStatusCmd creates the cluster status command. It probes the nodes, the
// API server, and the component deployments.
func NewStatusCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cluster health",
		Long: `Probe the cluster's health: the K3s service on every node over SSH, the
API server and its view of the nodes, and the rollout state of the enabled
component deployments.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, clusterFieldSelectors())

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"Print nothing and exit nonzero when any probe fails")

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleStatusRunE(cmd, cfgManager, tmr, quiet)
		}),
	)

	return cmd
}

func handleStatusRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
	quiet bool,
) error {
	if tmr != nil {
		tmr.Start()
	}

	// Quiet mode stays silent even while the config loads.
	cfg, err := cfgManager.Load(configmanagerinterface.LoadOptions{
		Silent: quiet,
		Timer:  helpers.MaybeTimer(cmd, tmr),
	})
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	if quiet {
		out = io.Discard
	}

	orch := newOrchestrator(cfg, out, bootstrap.Options{})

	report, err := orch.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to probe cluster: %w", err)
	}

	if quiet {
		if !report.Healthy() {
			return ErrClusterUnhealthy
		}

		return nil
	}

	renderStatusReport(cmd.OutOrStdout(), report)

	return nil
}

// renderStatusReport prints the full health picture, one probe per line.
func renderStatusReport(out io.Writer, report *bootstrap.Report) {
	notify.Titlef(out, "🩺", "Cluster status")

	for _, node := range report.Nodes {
		switch {
		case node.Healthy():
			notify.Successf(out, "node '%s' (%s): %s %s",
				node.Node.Name, node.Node.Address, node.Service, node.State)
		case node.Err != nil:
			notify.Errorf(out, "node '%s' (%s): %s (%v)",
				node.Node.Name, node.Node.Address, node.State, node.Err)
		default:
			notify.Errorf(out, "node '%s' (%s): %s %s",
				node.Node.Name, node.Node.Address, node.Service, node.State)
		}
	}

	if report.API.Err != nil {
		notify.Errorf(out, "api server: %v", report.API.Err)
	} else {
		arch := ""
		if len(report.API.Architectures) > 0 {
			arch = " (" + strings.Join(report.API.Architectures, "/") + ")"
		}

		notify.Successf(out, "api server %s: %d/%d node(s) ready%s",
			report.API.Version, report.API.ReadyNodes, report.API.TotalNodes, arch)
	}

	for _, component := range report.Components {
		switch {
		case component.Healthy():
			notify.Successf(out, "%s: deployment '%s/%s' ready",
				component.Component, component.Namespace, component.Deployment)
		case component.Err != nil:
			notify.Errorf(out, "%s: deployment '%s/%s': %v",
				component.Component, component.Namespace, component.Deployment, component.Err)
		default:
			notify.Warningf(out, "%s: deployment '%s/%s' not rolled out",
				component.Component, component.Namespace, component.Deployment)

			for _, pod := range component.FailingPods {
				notify.Warningf(out, "  %s", pod)
			}
		}
	}

	if report.Healthy() {
		notify.Successf(out, "cluster healthy")
	} else {
		notify.Warningf(out, "cluster has problems")
	}
}
