package cipher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/age"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/keyservice"
)

// ErrNoRecipients indicates no age recipient could be resolved for encryption.
var ErrNoRecipients = errors.New(
	"no age recipients configured, set --age, SOPS_AGE_RECIPIENTS, or a .sops.yaml creation rule",
)

const (
	// sopsAgeRecipientsEnv lists age recipients to encrypt for when no --age
	// flag is given.
	sopsAgeRecipientsEnv = "SOPS_AGE_RECIPIENTS"

	ageKeyPrefix          = "AGE-SECRET-KEY-"
	ageKeyFilePermissions = os.FileMode(0o600)
	ageKeyDirPermissions  = os.FileMode(0o700)
)

// resolveKeyGroups resolves the key groups to encrypt the data key for. The
// --age flag wins over the SOPS_AGE_RECIPIENTS environment variable, which
// wins over a .sops.yaml creation rule matching the input path.
func resolveKeyGroups(recipients, inputPath string) ([]sops.KeyGroup, int, error) {
	if recipients == "" {
		recipients = os.Getenv(sopsAgeRecipientsEnv)
	}

	if recipients != "" {
		masterKeys, err := age.MasterKeysFromRecipients(recipients)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse age recipients: %w", err)
		}

		group := make(sops.KeyGroup, 0, len(masterKeys))
		for _, key := range masterKeys {
			group = append(group, key)
		}

		return []sops.KeyGroup{group}, 0, nil
	}

	configPath, err := config.FindConfigFile(".")
	if err != nil {
		return nil, 0, ErrNoRecipients
	}

	conf, err := config.LoadCreationRuleForFile(configPath, inputPath, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load creation rule from '%s': %w", configPath, err)
	}

	if conf == nil || !hasMasterKeys(conf.KeyGroups) {
		return nil, 0, ErrNoRecipients
	}

	return conf.KeyGroups, conf.ShamirThreshold, nil
}

func hasMasterKeys(groups []sops.KeyGroup) bool {
	for _, group := range groups {
		if len(group) > 0 {
			return true
		}
	}

	return false
}

// defaultKeyServices returns the key services used to wrap and unwrap data
// keys. Kroft only ever talks to the local key service.
func defaultKeyServices() []keyservice.KeyServiceClient {
	return []keyservice.KeyServiceClient{keyservice.NewLocalClient()}
}

// ageKeyStorePath returns the age key file kroft shares with SOPS, following
// the SOPS convention of <user config dir>/sops/age/keys.txt. SOPS honors
// XDG_CONFIG_HOME on darwin where os.UserConfigDir does not, so the store
// path must apply the same override.
func ageKeyStorePath() (string, error) {
	configDir := ""
	if runtime.GOOS == "darwin" {
		configDir = os.Getenv("XDG_CONFIG_HOME")
	}

	if configDir == "" {
		var err error

		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate user config directory: %w", err)
		}
	}

	return filepath.Join(configDir, "sops", "age", "keys.txt"), nil
}

// storedIdentities returns the identity lines already present in the key
// store, keyed by the identity string. A missing key file yields an empty
// set.
func storedIdentities(path string) map[string]struct{} {
	identities := make(map[string]struct{})

	content, err := os.ReadFile(path) //#nosec G304 -- path is the resolved key store
	if err != nil {
		return identities
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ageKeyPrefix) {
			identities[line] = struct{}{}
		}
	}

	return identities
}

// formatKeyBlock renders an identity with the creation metadata comments the
// age tooling writes.
func formatKeyBlock(identity, recipient string) string {
	var builder strings.Builder

	builder.WriteString("# created: ")
	builder.WriteString(time.Now().UTC().Format(time.RFC3339))
	builder.WriteString("\n")

	if recipient != "" {
		builder.WriteString("# public key: ")
		builder.WriteString(recipient)
		builder.WriteString("\n")
	}

	builder.WriteString(identity)

	if !strings.HasSuffix(identity, "\n") {
		builder.WriteString("\n")
	}

	return builder.String()
}

// appendToKeyStore appends the given key block to the age key file, creating
// the file and its directory when missing. It returns the key file path.
func appendToKeyStore(block string) (string, error) {
	path, err := ageKeyStorePath()
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)

	err = os.MkdirAll(dir, ageKeyDirPermissions)
	if err != nil {
		return "", fmt.Errorf("failed to create key directory '%s': %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, ageKeyFilePermissions) //#nosec G304 -- path is the resolved key store
	if err != nil {
		return "", fmt.Errorf("failed to open key file '%s': %w", path, err)
	}

	_, writeErr := file.WriteString(block)
	closeErr := file.Close()

	if writeErr != nil {
		return "", fmt.Errorf("failed to write key file '%s': %w", path, writeErr)
	}

	if closeErr != nil {
		return "", fmt.Errorf("failed to close key file '%s': %w", path, closeErr)
	}

	return path, nil
}
