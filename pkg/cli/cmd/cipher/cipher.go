// Package cipher contains commands that manage encrypted secrets files with
// SOPS and age.
package cipher

import (
	"fmt"

	"github.com/spf13/cobra"

	runtime "github.com/kroft-dev/kroft/pkg/di"
)

// NewCipherCmd creates the cipher command group.
func NewCipherCmd(_ *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cipher",
		Short: "Manage encrypted secrets files with SOPS",
		Long: `Encrypt and decrypt secrets files with SOPS before they are committed next
to the cluster configuration. Keys are age identities, and the key store
follows the SOPS convention so plain sops and kroft can be used
interchangeably on the same files.`,
		Args:         cobra.NoArgs,
		RunE:         handleCipherRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewEncryptCmd())
	cmd.AddCommand(NewDecryptCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewKeygenCmd())

	return cmd
}

func handleCipherRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying cipher command help: %w", err)
	}

	return nil
}
