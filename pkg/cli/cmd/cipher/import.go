package cipher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

var (
	// ErrInvalidAgeKey indicates the key material is not a parseable age
	// identity.
	ErrInvalidAgeKey = errors.New("invalid age key format")

	// ErrKeyFileNotFound indicates the key file argument does not exist.
	ErrKeyFileNotFound = errors.New("key file not found")
)

// NewImportCmd creates and returns the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [key-file]",
		Short: "Import an age private key into the SOPS key store",
		Long: `Import an age private key into the SOPS key store so kroft and plain sops
can decrypt files encrypted for it. The key is read from the given file, or
from standard input when no file is given, and appended to the key store at
<user config dir>/sops/age/keys.txt. Keys already present are skipped.

The key must be an age identity starting with "` + ageKeyPrefix + `". Comment
lines are allowed and ignored.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         handleImportRunE,
	}

	return cmd
}

func handleImportRunE(cmd *cobra.Command, args []string) error {
	content, err := readKeyMaterial(cmd, args)
	if err != nil {
		return err
	}

	identities, err := age.ParseIdentities(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAgeKey, err)
	}

	x25519s := x25519Identities(identities)
	if len(x25519s) == 0 {
		return fmt.Errorf("%w: no age secret key found", ErrInvalidAgeKey)
	}

	storePath, err := ageKeyStorePath()
	if err != nil {
		return err
	}

	block, imported := newIdentityBlocks(x25519s, storedIdentities(storePath))
	if imported == 0 {
		notify.Warningf(cmd.OutOrStdout(), "all keys already present in '%s'", storePath)

		return nil
	}

	storePath, err = appendToKeyStore(block)
	if err != nil {
		return fmt.Errorf("failed to import age key: %w", err)
	}

	notify.Successf(cmd.OutOrStdout(), "imported %d age key(s) into '%s'", imported, storePath)

	return nil
}

// readKeyMaterial loads the key content from the file argument or from
// standard input.
func readKeyMaterial(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 {
		content, err := os.ReadFile(args[0]) //#nosec G304 -- user-provided key file path
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: '%s'", ErrKeyFileNotFound, args[0])
			}

			return nil, fmt.Errorf("failed to read key file '%s': %w", args[0], err)
		}

		return content, nil
	}

	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read key from stdin: %w", err)
	}

	return content, nil
}

// x25519Identities filters the parsed identities down to the X25519 ones
// the SOPS key store holds.
func x25519Identities(identities []age.Identity) []*age.X25519Identity {
	var x25519s []*age.X25519Identity

	for _, identity := range identities {
		if x25519, ok := identity.(*age.X25519Identity); ok {
			x25519s = append(x25519s, x25519)
		}
	}

	return x25519s
}

// newIdentityBlocks renders the key blocks for the identities not yet
// present in the key store and returns how many will be imported.
func newIdentityBlocks(identities []*age.X25519Identity, existing map[string]struct{}) (string, int) {
	var builder strings.Builder

	imported := 0

	for _, identity := range identities {
		if _, found := existing[identity.String()]; found {
			continue
		}

		builder.WriteString(formatKeyBlock(identity.String(), identity.Recipient().String()))

		imported++
	}

	return builder.String(), imported
}
