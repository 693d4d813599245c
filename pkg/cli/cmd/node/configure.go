package node

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/client/ansible"
	runtime "github.com/kroft-dev/kroft/pkg/di"
	"github.com/kroft-dev/kroft/pkg/fsutil"
	kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// DefaultPlaybook is the playbook node configure runs when none is given.
const DefaultPlaybook = "playbooks/site.yaml"

// configureOptions holds the flag values of the node configure command.
type configureOptions struct {
	playbook  string
	tags      []string
	extraVars map[string]string
	attempts  int
}

// NewConfigureCmd creates the node configure command. It renders an ansible
// inventory from the cluster configuration and runs a playbook against it.
func NewConfigureCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	opts := &configureOptions{}

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Run the configuration playbook against all nodes",
		Long: `Run an ansible playbook against every node in the cluster
configuration. The inventory is generated from the declared nodes, so hosts,
groups and SSH settings always match the cluster configuration.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := kroftconfigmanager.NewCommandConfigManager(cmd, kroftconfigmanager.DefaultNodeFieldSelectors())

	cmd.Flags().StringVar(&opts.playbook, "playbook", DefaultPlaybook, "Playbook to run")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "Only run plays and tasks tagged with these values")
	cmd.Flags().StringToStringVar(&opts.extraVars, "extra-var", nil, "Extra variables passed to the playbook as key=value")
	cmd.Flags().IntVar(&opts.attempts, "attempts", ansible.DefaultAttempts, "How often a failing playbook run is retried")

	cmd.RunE = runtime.RunEWithRuntime(
		runtimeContainer,
		runtime.WithTimer(func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleConfigureRunE(cmd, cfgManager, tmr, opts)
		}),
	)

	return cmd
}

func handleConfigureRunE(
	cmd *cobra.Command,
	cfgManager *kroftconfigmanager.ConfigManager,
	tmr timer.Timer,
	opts *configureOptions,
) error {
	if tmr != nil {
		tmr.Start()
	}

	outputTimer := helpers.MaybeTimer(cmd, tmr)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load cluster configuration: %w", err)
	}

	notify.Titlef(cmd.OutOrStdout(), "🔧", "Configure nodes...")

	inventory, err := buildInventory(&cfg.Spec)
	if err != nil {
		return fmt.Errorf("failed to build inventory: %w", err)
	}

	inventoryDir, err := os.MkdirTemp("", "kroft-inventory-")
	if err != nil {
		return fmt.Errorf("failed to create inventory directory: %w", err)
	}

	defer func() { _ = os.RemoveAll(inventoryDir) }()

	inventoryPath := filepath.Join(inventoryDir, "inventory.ini")

	err = inventory.Write(inventoryPath)
	if err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}

	notify.Activityf(cmd.OutOrStdout(), "running playbook '%s' against %d node(s)", opts.playbook, len(cfg.Spec.Nodes))

	client := ansible.NewClient(cmd.OutOrStdout())

	err = client.RunPlaybook(cmd.Context(), opts.playbook, ansible.RunOptions{
		Inventory: inventoryPath,
		ExtraVars: opts.extraVars,
		Tags:      opts.tags,
		Attempts:  opts.attempts,
	})
	if err != nil {
		return fmt.Errorf("failed to run playbook: %w", err)
	}

	notify.SuccessWithTimerf(cmd.OutOrStdout(), helpers.MaybeTimer(cmd, tmr), "nodes configured")

	return nil
}

// buildInventory groups the declared nodes into the masters and workers
// sections the playbooks target. The SSH identity file is expanded so the
// inventory works regardless of where ansible resolves '~' to.
func buildInventory(spec *v1alpha1.Spec) (ansible.Inventory, error) {
	identityFile, err := fsutil.ExpandHomePath(spec.SSH.IdentityFile)
	if err != nil {
		return ansible.Inventory{}, fmt.Errorf("expand identity file path: %w", err)
	}

	var inventory ansible.Inventory

	for _, clusterNode := range spec.Nodes {
		host := ansible.Host{
			Name:         clusterNode.Name,
			Address:      clusterNode.Address,
			User:         spec.SSH.User,
			Port:         spec.SSH.Port,
			IdentityFile: identityFile,
		}

		switch clusterNode.Role {
		case v1alpha1.RoleMaster:
			inventory.Masters = append(inventory.Masters, host)
		case v1alpha1.RoleWorker:
			inventory.Workers = append(inventory.Workers, host)
		}
	}

	return inventory, nil
}
