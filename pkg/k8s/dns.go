package k8s

import "strings"

// SanitizeToDNSLabel lowercases a name and collapses every run of characters
// outside [a-z0-9] into a single interior hyphen. Cluster names flow into
// kubeconfig context and cluster entries, which must be valid DNS-1123
// labels.
func SanitizeToDNSLabel(value string) string {
	parts := strings.FieldsFunc(strings.ToLower(value), func(char rune) bool {
		outsideLower := char < 'a' || char > 'z'
		outsideDigit := char < '0' || char > '9'

		return outsideLower && outsideDigit
	})

	return strings.Join(parts, "-")
}
