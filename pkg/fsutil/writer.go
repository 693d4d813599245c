package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File writing operations.

const (
	// dirPermUserGroupRX allows the owner full access and the group read/execute.
	dirPermUserGroupRX = 0o750
	// filePermUserRW keeps generated files private to the owner.
	filePermUserRW = 0o600
)

// TryWriteFile writes content to output, creating parent directories as
// needed. When force is false an existing file is left untouched, so
// scaffolded trees can be regenerated without clobbering local edits. The
// content is returned either way for callers that chain on it.
func TryWriteFile(content string, output string, force bool) (string, error) {
	if output == "" {
		return "", ErrEmptyOutputPath
	}

	output = filepath.Clean(output)

	if !force {
		exists, err := fileExists(output)
		if err != nil {
			return "", err
		}

		if exists {
			return content, nil
		}
	}

	dir := filepath.Dir(output)

	err := os.MkdirAll(dir, dirPermUserGroupRX)
	if err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	err = os.WriteFile(output, []byte(content), filePermUserRW)
	if err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", output, err)
	}

	return content, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("failed to check file %s: %w", path, err)
}
