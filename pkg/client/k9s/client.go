// Package k9s wraps the embedded k9s terminal UI for cluster inspection.
package k9s

import (
	"os"

	k9scmd "github.com/derailed/k9s/cmd"
	"github.com/kroft-dev/kroft/pkg/cli/ui"
	"github.com/spf13/cobra"
)

// Client launches the embedded k9s UI.
type Client struct {
	// launch starts k9s once os.Args is prepared. Swapped in tests.
	launch func()
}

// NewClient creates a k9s client backed by the embedded k9s command tree.
func NewClient() *Client {
	return &Client{launch: k9scmd.Execute}
}

// CreateConnectCommand builds the connect command that hands the terminal
// over to k9s for the given kubeconfig and context.
func (c *Client) CreateConnectCommand(kubeConfigPath, context string) *cobra.Command {
	return &cobra.Command{
		Use:          "connect",
		Short:        "Connect to cluster with k9s",
		Long:         "Launch k9s terminal UI to interactively manage your Kubernetes cluster.",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return c.runK9s(kubeConfigPath, context, args)
		},
	}
}

// runK9s swaps os.Args for the duration of the launch, since k9s parses its
// flags from the process arguments.
func (c *Client) runK9s(kubeConfigPath, context string, args []string) error {
	ui.SetTerminalTitle("kroft")

	originalArgs := os.Args

	defer func() {
		os.Args = originalArgs
	}()

	os.Args = k9sArgs(kubeConfigPath, context, args)

	c.launch()

	return nil
}

// k9sArgs assembles the process arguments k9s parses on startup.
func k9sArgs(kubeConfigPath, context string, extra []string) []string {
	args := []string{"k9s"}

	if kubeConfigPath != "" {
		args = append(args, "--kubeconfig", kubeConfigPath)
	}

	if context != "" {
		args = append(args, "--context", context)
	}

	return append(args, extra...)
}
