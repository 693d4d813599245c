package fsutil

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Path expansion operations.

// ExpandHomePath expands a path beginning with ~/ to the user's home directory
// and converts relative paths to absolute paths.
//
// Config values like the kubeconfig path and SSH identity file default to
// ~-prefixed paths, so every file consumer goes through this helper.
func ExpandHomePath(path string) (string, error) {
	if rest, found := strings.CutPrefix(path, "~/"); found {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to get current user: %w", err)
		}

		path = filepath.Join(usr.HomeDir, rest)
	}

	if filepath.IsAbs(path) {
		return path, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert to absolute path: %w", err)
	}

	return abs, nil
}

// ReadFileSafe reads a file after expanding ~ and relative prefixes.
//
// Returns ErrEmptyInputPath when path is empty so callers can distinguish
// unconfigured values from read failures.
func ReadFileSafe(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyInputPath
	}

	expanded, err := ExpandHomePath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", expanded, err)
	}

	return data, nil
}
