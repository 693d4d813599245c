package cipher

import (
	"errors"
	"fmt"

	"github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	"github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/keyservice"
	"github.com/getsops/sops/v3/version"
	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

var (
	// ErrAlreadyEncrypted indicates the input already carries SOPS metadata.
	ErrAlreadyEncrypted = errors.New("file is already encrypted")

	// ErrStdinInPlace indicates --in-place was combined with stdin input.
	ErrStdinInPlace = errors.New("cannot use --in-place when reading from stdin")

	// ErrDataKeyGeneration indicates the data key could not be wrapped for
	// all master keys.
	ErrDataKeyGeneration = errors.New("failed to generate data key")
)

// encryptConfig holds the key material configuration for an encryption.
type encryptConfig struct {
	KeyGroups      []sops.KeyGroup
	GroupThreshold int
}

// encryptOpts are the options for encrypting a single document.
type encryptOpts struct {
	encryptConfig

	Cipher        sops.Cipher
	InputStore    sops.Store
	OutputStore   sops.Store
	InputPath     string
	ReadFromStdin bool
	KeyServices   []keyservice.KeyServiceClient
}

// encryptOptions holds the encrypt command flag values.
type encryptOptions struct {
	inPlace    bool
	recipients string
	format     string
}

// NewEncryptCmd creates and returns the encrypt command.
func NewEncryptCmd() *cobra.Command {
	opts := &encryptOptions{}

	cmd := &cobra.Command{
		Use:   "encrypt [file]",
		Short: "Encrypt a secrets file with SOPS",
		Long: `Encrypt a secrets file with SOPS so it is safe to commit. Values are
encrypted with AES256-GCM under a data key wrapped for the resolved age
recipients. Recipients come from --age, the SOPS_AGE_RECIPIENTS environment
variable, or a .sops.yaml creation rule matching the file.

Without a file argument the document is read from standard input. The
encrypted document is written to standard output unless --in-place rewrites
the input file.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleEncryptRunE(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(
		&opts.inPlace, "in-place", "i", false,
		"Write the encrypted document back to the input file",
	)
	cmd.Flags().StringVar(
		&opts.recipients, "age", "",
		"Comma-separated age recipients to encrypt for",
	)
	cmd.Flags().StringVar(
		&opts.format, "format", "yaml",
		"Input format when reading from stdin (yaml, json, dotenv, ini, or binary)",
	)

	return cmd
}

func handleEncryptRunE(cmd *cobra.Command, args []string, opts *encryptOptions) error {
	inputPath, readFromStdin := resolveInputPath(args)

	if readFromStdin && opts.inPlace {
		return ErrStdinInPlace
	}

	var (
		inputStore  sops.Store
		outputStore sops.Store
		err         error
	)

	if readFromStdin {
		inputStore, outputStore, err = getStdinStores(opts.format, false)
	} else {
		inputStore, outputStore, err = getStores(inputPath)
	}

	if err != nil {
		return err
	}

	keyGroups, threshold, err := resolveKeyGroups(opts.recipients, inputPath)
	if err != nil {
		return err
	}

	encrypted, err := encrypt(encryptOpts{
		encryptConfig: encryptConfig{
			KeyGroups:      keyGroups,
			GroupThreshold: threshold,
		},
		Cipher:        aes.NewCipher(),
		InputStore:    inputStore,
		OutputStore:   outputStore,
		InputPath:     inputPath,
		ReadFromStdin: readFromStdin,
		KeyServices:   defaultKeyServices(),
	})
	if err != nil {
		return err
	}

	if opts.inPlace {
		err = writeInPlace(inputPath, encrypted)
		if err != nil {
			return err
		}

		notify.Successf(cmd.OutOrStdout(), "encrypted '%s' in place", inputPath)

		return nil
	}

	_, err = cmd.OutOrStdout().Write(encrypted)
	if err != nil {
		return fmt.Errorf("failed to write encrypted output: %w", err)
	}

	return nil
}

// resolveInputPath returns the input path from the arguments, falling back to
// standard input when no argument is given.
func resolveInputPath(args []string) (string, bool) {
	if len(args) == 0 {
		return "", true
	}

	return args[0], false
}

// encrypt loads a plain document, generates a data key wrapped for all
// configured key groups, and returns the encrypted document.
func encrypt(opts encryptOpts) ([]byte, error) {
	fileBytes, err := readInput(opts.InputPath, opts.ReadFromStdin)
	if err != nil {
		return nil, err
	}

	branches, err := opts.InputStore.LoadPlainFile(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to load '%s': %w", opts.InputPath, err)
	}

	for _, branch := range branches {
		if opts.InputStore.HasSopsTopLevelKey(branch) {
			return nil, fmt.Errorf("%w: '%s'", ErrAlreadyEncrypted, opts.InputPath)
		}
	}

	tree := sops.Tree{
		Branches: branches,
		Metadata: sops.Metadata{
			KeyGroups:       opts.KeyGroups,
			ShamirThreshold: opts.GroupThreshold,
			Version:         version.Version,
		},
		FilePath: opts.InputPath,
	}

	dataKey, errs := tree.GenerateDataKeyWithKeyServices(opts.KeyServices)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrDataKeyGeneration, errs)
	}

	err = common.EncryptTree(common.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  opts.Cipher,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt tree: %w", err)
	}

	encrypted, err := opts.OutputStore.EmitEncryptedFile(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to emit encrypted file: %w", err)
	}

	return encrypted, nil
}
