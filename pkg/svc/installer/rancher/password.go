package rancherinstaller

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

// BootstrapPasswordEnvVar overrides the bootstrap password file when set.
const BootstrapPasswordEnvVar = "KROFT_RANCHER_BOOTSTRAP_PASSWORD" //nolint:gosec // env var name, not a credential

// ErrEmptyBootstrapPasswordFile is returned when the configured password file
// contains nothing but whitespace.
var ErrEmptyBootstrapPasswordFile = errors.New("bootstrap password file is empty")

// ResolveBootstrapPassword returns the initial Rancher admin password from the
// environment or the configured password file, in that order. An empty result
// with a nil error means neither source is configured and the caller decides
// whether to prompt.
func ResolveBootstrapPassword(config v1alpha1.Rancher) (string, error) {
	if password := strings.TrimSpace(os.Getenv(BootstrapPasswordEnvVar)); password != "" {
		return password, nil
	}

	if config.BootstrapPasswordFile == "" {
		return "", nil
	}

	content, err := os.ReadFile(config.BootstrapPasswordFile)
	if err != nil {
		return "", fmt.Errorf("read bootstrap password file: %w", err)
	}

	password := strings.TrimSpace(string(content))
	if password == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyBootstrapPasswordFile, config.BootstrapPasswordFile)
	}

	return password, nil
}
