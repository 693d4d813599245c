// Package kubectl embeds kubectl's cobra commands so workload operations
// behave exactly like the upstream CLI without shelling out to a binary.
package kubectl

import (
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	cmdapply "k8s.io/kubectl/pkg/cmd/apply"
	cmddelete "k8s.io/kubectl/pkg/cmd/delete"
	cmdget "k8s.io/kubectl/pkg/cmd/get"
	cmdutil "k8s.io/kubectl/pkg/cmd/util"
)

// baseName is the command name kubectl renders in usage strings.
const baseName = "kubectl"

// Client creates kubectl commands bound to a kubeconfig.
type Client struct {
	streams genericiooptions.IOStreams
}

// NewClient creates a kubectl client writing to the provided IO streams.
func NewClient(streams genericiooptions.IOStreams) *Client {
	return &Client{streams: streams}
}

// CreateApplyCommand returns kubectl's apply command. The caller sets the
// filename or kustomize flags before execution.
func (c *Client) CreateApplyCommand(kubeconfigPath string) *cobra.Command {
	return cmdapply.NewCmdApply(baseName, c.newFactory(kubeconfigPath), c.streams)
}

// CreateGetCommand returns kubectl's get command.
func (c *Client) CreateGetCommand(kubeconfigPath string) *cobra.Command {
	return cmdget.NewCmdGet(baseName, c.newFactory(kubeconfigPath), c.streams)
}

// CreateDeleteCommand returns kubectl's delete command.
func (c *Client) CreateDeleteCommand(kubeconfigPath string) *cobra.Command {
	return cmddelete.NewCmdDelete(c.newFactory(kubeconfigPath), c.streams)
}

// newFactory builds a kubectl command factory for the given kubeconfig. An
// empty path falls back to kubectl's own resolution (KUBECONFIG, ~/.kube).
func (c *Client) newFactory(kubeconfigPath string) cmdutil.Factory {
	configFlags := genericclioptions.NewConfigFlags(true)
	if kubeconfigPath != "" {
		configFlags.KubeConfig = &kubeconfigPath
	}

	return cmdutil.NewFactory(cmdutil.NewMatchVersionFlags(configFlags))
}
