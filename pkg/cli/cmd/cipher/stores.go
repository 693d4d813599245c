package cipher

import (
	"fmt"
	"io"
	"os"

	"github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/cmd/sops/formats"
	"github.com/getsops/sops/v3/config"
)

const inPlaceFallbackMode = os.FileMode(0o600)

// loadStoresConfig resolves the stores section of a .sops.yaml found by
// walking up from the working directory. A missing config file is not an
// error, the SOPS defaults apply.
func loadStoresConfig() (*config.StoresConfig, error) {
	configPath, err := config.FindConfigFile(".")
	if err != nil {
		return config.NewStoresConfig(), nil
	}

	storesConfig, err := config.LoadStoresConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores configuration from '%s': %w", configPath, err)
	}

	return storesConfig, nil
}

// getStores returns the input and output stores for encrypting the given
// file. Both stores use the format implied by the file extension.
func getStores(path string) (sops.Store, sops.Store, error) {
	storesConfig, err := loadStoresConfig()
	if err != nil {
		return nil, nil, err
	}

	inputStore := common.DefaultStoreForPath(storesConfig, path)
	outputStore := common.DefaultStoreForPath(storesConfig, path)

	return inputStore, outputStore, nil
}

// getDecryptStores returns the input and output stores for decrypting the
// given file. With jsonOutput the decrypted document is emitted as JSON
// regardless of the input format.
func getDecryptStores(path string, jsonOutput bool) (sops.Store, sops.Store, error) {
	storesConfig, err := loadStoresConfig()
	if err != nil {
		return nil, nil, err
	}

	inputStore := common.DefaultStoreForPath(storesConfig, path)

	var outputStore sops.Store
	if jsonOutput {
		outputStore = common.StoreForFormat(formats.Json, storesConfig)
	} else {
		outputStore = common.DefaultStoreForPath(storesConfig, path)
	}

	return inputStore, outputStore, nil
}

// getStdinStores returns the stores used when the document arrives on
// standard input, where no file extension is available to infer the format.
func getStdinStores(format string, jsonOutput bool) (sops.Store, sops.Store, error) {
	storesConfig, err := loadStoresConfig()
	if err != nil {
		return nil, nil, err
	}

	inputFormat := formats.FormatFromString(format)

	outputFormat := inputFormat
	if jsonOutput {
		outputFormat = formats.Json
	}

	inputStore := common.StoreForFormat(inputFormat, storesConfig)
	outputStore := common.StoreForFormat(outputFormat, storesConfig)

	return inputStore, outputStore, nil
}

// readInput loads the document to process, either from the input path or
// from standard input.
func readInput(path string, fromStdin bool) ([]byte, error) {
	if fromStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path) //#nosec G304 -- user-provided secrets file path
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}

	return data, nil
}

// writeInPlace replaces the input file with the processed document, keeping
// the original file permissions.
func writeInPlace(path string, data []byte) error {
	mode := inPlaceFallbackMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	err := os.WriteFile(path, data, mode)
	if err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}

	return nil
}
