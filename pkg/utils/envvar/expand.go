// Package envvar provides environment variable expansion for configuration
// values.
package envvar

import (
	"os"
	"regexp"
	"strings"
)

// placeholder matches ${VAR_NAME} references.
var placeholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Expand replaces ${VAR_NAME} placeholders in value with the contents of the
// named environment variable. Placeholders for unset variables collapse to
// the empty string. Bare $VAR references pass through untouched so shell
// fragments in provisioning commands survive config loading.
func Expand(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}

	return placeholder.ReplaceAllStringFunc(value, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")

		return os.Getenv(name)
	})
}
