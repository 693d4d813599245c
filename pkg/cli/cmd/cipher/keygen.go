package cipher

import (
	"fmt"

	"filippo.io/age"
	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

// NewKeygenCmd creates and returns the keygen command.
func NewKeygenCmd() *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an age key pair for encrypting secrets",
		Long: `Generate an X25519 age identity and append it to the SOPS key store at
<user config dir>/sops/age/keys.txt. The public key is printed so it can be
added to a .sops.yaml creation rule or passed to 'kroft cipher encrypt
--age'. With --stdout the identity is written to standard output instead of
the key store.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handleKeygenRunE(cmd, toStdout)
		},
	}

	cmd.Flags().BoolVar(
		&toStdout, "stdout", false,
		"Print the identity instead of storing it",
	)

	return cmd
}

func handleKeygenRunE(cmd *cobra.Command, toStdout bool) error {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("failed to generate age identity: %w", err)
	}

	recipient := identity.Recipient().String()
	block := formatKeyBlock(identity.String(), recipient)

	if toStdout {
		_, err = fmt.Fprint(cmd.OutOrStdout(), block)
		if err != nil {
			return fmt.Errorf("failed to write identity: %w", err)
		}

		return nil
	}

	storePath, err := appendToKeyStore(block)
	if err != nil {
		return fmt.Errorf("failed to store age identity: %w", err)
	}

	notify.Successf(cmd.OutOrStdout(), "age identity stored in '%s'", storePath)
	notify.Infof(cmd.OutOrStdout(), "public key: %s", recipient)

	return nil
}
