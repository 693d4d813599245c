package cipher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	"github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/keyservice"
	"github.com/spf13/cobra"

	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

var (
	// ErrExtractInPlace indicates --extract was combined with --in-place.
	ErrExtractInPlace = errors.New("cannot use --extract with --in-place")

	// ErrJSONInPlace indicates --json was combined with --in-place.
	ErrJSONInPlace = errors.New("cannot use --json with --in-place")

	// ErrInvalidExtractPath indicates the --extract expression could not be
	// parsed.
	ErrInvalidExtractPath = errors.New("invalid extract path")
)

// decryptOpts are the options for decrypting a single document.
type decryptOpts struct {
	Cipher          sops.Cipher
	InputStore      sops.Store
	OutputStore     sops.Store
	InputPath       string
	ReadFromStdin   bool
	IgnoreMAC       bool
	Extract         []any
	KeyServices     []keyservice.KeyServiceClient
	DecryptionOrder []string
}

// decryptOptions holds the decrypt command flag values.
type decryptOptions struct {
	inPlace    bool
	extract    string
	ignoreMAC  bool
	jsonOutput bool
	format     string
}

// NewDecryptCmd creates and returns the decrypt command.
func NewDecryptCmd() *cobra.Command {
	opts := &decryptOptions{}

	cmd := &cobra.Command{
		Use:   "decrypt [file]",
		Short: "Decrypt a SOPS encrypted secrets file",
		Long: `Decrypt a SOPS encrypted secrets file with the age identities available to
this machine, read from SOPS_AGE_KEY, SOPS_AGE_KEY_FILE, or the SOPS key
store. A single value or branch can be pulled out with --extract, for
example --extract '["data"]["token"]'.

Without a file argument the document is read from standard input. The
decrypted document is written to standard output unless --in-place rewrites
the input file.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleDecryptRunE(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(
		&opts.inPlace, "in-place", "i", false,
		"Write the decrypted document back to the input file",
	)
	cmd.Flags().StringVar(
		&opts.extract, "extract", "",
		"Extract a specific key or branch from the decrypted document",
	)
	cmd.Flags().BoolVar(
		&opts.ignoreMAC, "ignore-mac", false,
		"Skip message authentication code verification",
	)
	cmd.Flags().BoolVar(
		&opts.jsonOutput, "json", false,
		"Emit the decrypted document as JSON",
	)
	cmd.Flags().StringVar(
		&opts.format, "format", "yaml",
		"Input format when reading from stdin (yaml, json, dotenv, ini, or binary)",
	)

	return cmd
}

func handleDecryptRunE(cmd *cobra.Command, args []string, opts *decryptOptions) error {
	inputPath, readFromStdin := resolveInputPath(args)

	if readFromStdin && opts.inPlace {
		return ErrStdinInPlace
	}

	if opts.extract != "" && opts.inPlace {
		return ErrExtractInPlace
	}

	if opts.jsonOutput && opts.inPlace {
		return ErrJSONInPlace
	}

	var extract []any

	if opts.extract != "" {
		var err error

		extract, err = parseTreePath(opts.extract)
		if err != nil {
			return err
		}
	}

	var (
		inputStore  sops.Store
		outputStore sops.Store
		err         error
	)

	if readFromStdin {
		inputStore, outputStore, err = getStdinStores(opts.format, opts.jsonOutput)
	} else {
		inputStore, outputStore, err = getDecryptStores(inputPath, opts.jsonOutput)
	}

	if err != nil {
		return err
	}

	decrypted, err := decrypt(decryptOpts{
		Cipher:          aes.NewCipher(),
		InputStore:      inputStore,
		OutputStore:     outputStore,
		InputPath:       inputPath,
		ReadFromStdin:   readFromStdin,
		IgnoreMAC:       opts.ignoreMAC,
		Extract:         extract,
		KeyServices:     defaultKeyServices(),
		DecryptionOrder: []string{},
	})
	if err != nil {
		return err
	}

	if opts.inPlace {
		err = writeInPlace(inputPath, decrypted)
		if err != nil {
			return err
		}

		notify.Successf(cmd.OutOrStdout(), "decrypted '%s' in place", inputPath)

		return nil
	}

	_, err = cmd.OutOrStdout().Write(decrypted)
	if err != nil {
		return fmt.Errorf("failed to write decrypted output: %w", err)
	}

	return nil
}

// decrypt loads an encrypted document, unwraps the data key with the
// available key services, and returns the decrypted document.
func decrypt(opts decryptOpts) ([]byte, error) {
	fileBytes, err := readInput(opts.InputPath, opts.ReadFromStdin)
	if err != nil {
		return nil, err
	}

	tree, err := opts.InputStore.LoadEncryptedFile(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to load encrypted file '%s': %w", opts.InputPath, err)
	}

	tree.FilePath = opts.InputPath

	_, err = common.DecryptTree(common.DecryptTreeOpts{
		Cipher:          opts.Cipher,
		IgnoreMac:       opts.IgnoreMAC,
		Tree:            &tree,
		KeyServices:     opts.KeyServices,
		DecryptionOrder: opts.DecryptionOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt '%s': %w", opts.InputPath, err)
	}

	if len(opts.Extract) > 0 {
		return extractValue(&tree, opts.Extract, opts.OutputStore)
	}

	decrypted, err := opts.OutputStore.EmitPlainFile(tree.Branches)
	if err != nil {
		return nil, fmt.Errorf("failed to emit decrypted file: %w", err)
	}

	return decrypted, nil
}

// extractValue pulls a single value or branch out of the decrypted tree.
// Scalar strings are returned raw so they can be piped directly.
func extractValue(tree *sops.Tree, path []any, outputStore sops.Store) ([]byte, error) {
	value, err := tree.Branches[0].Truncate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %v: %w", path, err)
	}

	if branch, ok := value.(sops.TreeBranch); ok {
		tree.Branches = sops.TreeBranches{branch}

		emitted, err := outputStore.EmitPlainFile(tree.Branches)
		if err != nil {
			return nil, fmt.Errorf("failed to emit extracted branch: %w", err)
		}

		return emitted, nil
	}

	if str, ok := value.(string); ok {
		return []byte(str), nil
	}

	emitted, err := outputStore.EmitValue(value)
	if err != nil {
		return nil, fmt.Errorf("failed to emit extracted value: %w", err)
	}

	return emitted, nil
}

// parseTreePath parses an extract expression in the SOPS bracket syntax,
// for example '["data"]["token"]' or '["items"][0]'.
func parseTreePath(arg string) ([]any, error) {
	var path []any

	for _, component := range strings.Split(arg, "[") {
		if component == "" {
			continue
		}

		if !strings.HasSuffix(component, "]") {
			return nil, fmt.Errorf("%w: component '%s' does not end with ']'", ErrInvalidExtractPath, component)
		}

		component = strings.TrimSuffix(component, "]")

		if strings.HasPrefix(component, `"`) || strings.HasPrefix(component, `'`) {
			if len(component) < 2 || !strings.HasSuffix(component, component[:1]) {
				return nil, fmt.Errorf("%w: unterminated quote in '%s'", ErrInvalidExtractPath, component)
			}

			path = append(path, component[1:len(component)-1])

			continue
		}

		index, err := strconv.Atoi(component)
		if err != nil {
			return nil, fmt.Errorf("%w: component '%s' is neither quoted nor an index", ErrInvalidExtractPath, component)
		}

		path = append(path, index)
	}

	if len(path) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidExtractPath, arg)
	}

	return path, nil
}
