package configmanager

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
)

// flagNameOverrides maps config field paths to flag names where the generated
// name would be awkward on the command line.
var flagNameOverrides = map[string]string{
	"Spec.Dev.Distribution":    "distribution",
	"Spec.CloudInit.OutputDir": "cloud-init-dir",
}

// prefixedParents lists the Spec sub-structs whose field flags carry the
// parent name to stay unambiguous (e.g. --ssh-user rather than --user).
var prefixedParents = map[string]bool{
	"SSH":         true,
	"Network":     true,
	"CloudInit":   true,
	"K3s":         true,
	"CertManager": true,
	"Rancher":     true,
	"Fleet":       true,
	"Dev":         true,
}

// flagShorthands maps well-known flag names to their single-letter shorthands.
var flagShorthands = map[string]string{
	"name":             "n",
	"context":          "c",
	"kubeconfig":       "k",
	"timeout":          "t",
	"source-directory": "s",
	"distribution":     "d",
}

// AddFlagsFromFields registers a CLI flag on the command for every field
// selector, bound directly to the config struct field.
func (m *ConfigManager) AddFlagsFromFields(cmd *cobra.Command) {
	for _, selector := range m.fieldSelectors {
		fieldPtr := selector.Selector(m.Config)
		if fieldPtr == nil {
			continue
		}

		flagName := m.GenerateFlagName(fieldPtr)
		if flagName == "" {
			continue
		}

		m.bindFlag(cmd.Flags(), fieldPtr, flagName, m.GenerateShorthand(flagName), selector)
	}
}

// GenerateFlagName derives the CLI flag name for a config field from its
// position in the Cluster struct. Returns an empty string when the pointer
// does not address a field of the managed config.
func (m *ConfigManager) GenerateFlagName(fieldPtr any) string {
	target := reflect.ValueOf(fieldPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return ""
	}

	path := findFieldPath(reflect.ValueOf(m.Config).Elem(), target, nil)
	if len(path) == 0 {
		return ""
	}

	if override, ok := flagNameOverrides[strings.Join(path, ".")]; ok {
		return override
	}

	leaf := kebabCase(path[len(path)-1])
	if len(path) >= 2 {
		parent := path[len(path)-2]
		if prefixedParents[parent] {
			return kebabCase(parent) + "-" + leaf
		}
	}

	return leaf
}

// GenerateShorthand returns the single-letter shorthand for a flag name, or
// an empty string when the flag has none.
func (m *ConfigManager) GenerateShorthand(flagName string) string {
	return flagShorthands[flagName]
}

func (m *ConfigManager) bindFlag(
	flags *pflag.FlagSet,
	fieldPtr any,
	name string,
	shorthand string,
	selector FieldSelector[v1alpha1.Cluster],
) {
	// Enum fields implement pflag.Value themselves. Seed the default so the
	// flag help shows it.
	if value, ok := fieldPtr.(pflag.Value); ok {
		setFieldValue(fieldPtr, selector.DefaultValue)
		flags.VarP(value, name, shorthand, selector.Description)

		return
	}

	switch ptr := fieldPtr.(type) {
	case *string:
		flags.StringVarP(ptr, name, shorthand, stringDefault(selector.DefaultValue), selector.Description)
	case *bool:
		flags.BoolVarP(ptr, name, shorthand, boolDefault(selector.DefaultValue), selector.Description)
	case *int:
		flags.IntVarP(ptr, name, shorthand, intDefault(selector.DefaultValue), selector.Description)
	case *metav1.Duration:
		flags.DurationVarP(&ptr.Duration, name, shorthand, durationDefault(selector.DefaultValue), selector.Description)
	}
}

// findFieldPath walks the exported fields of val looking for the struct field
// addressed by target, returning the field name path to it.
func findFieldPath(val reflect.Value, target reflect.Value, path []string) []string {
	targetPtr := target.Pointer()
	targetType := target.Type().Elem()

	for i := range val.NumField() {
		structField := val.Type().Field(i)
		if !structField.IsExported() {
			continue
		}

		field := val.Field(i)
		if field.CanAddr() && field.Addr().Pointer() == targetPtr && field.Type() == targetType {
			return appendPath(path, structField.Name)
		}

		if field.Kind() == reflect.Struct {
			found := findFieldPath(field, target, appendPath(path, structField.Name))
			if found != nil {
				return found
			}
		}
	}

	return nil
}

// appendPath copies the path before appending so sibling recursions never
// share a backing array.
func appendPath(path []string, name string) []string {
	next := make([]string, len(path)+1)
	copy(next, path)
	next[len(path)] = name

	return next
}

// kebabCase converts a Go field name to its kebab-case flag spelling,
// keeping acronym runs intact (SourceDirectory -> source-directory,
// CIDRPrefix -> cidr-prefix, K3s -> k3s).
func kebabCase(name string) string {
	runes := []rune(name)

	var builder strings.Builder

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			builder.WriteRune(r)

			continue
		}

		afterLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
		acronymEnd := i > 0 && unicode.IsUpper(runes[i-1]) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1])

		if afterLower || acronymEnd {
			builder.WriteRune('-')
		}

		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}

func stringDefault(value any) string {
	str, _ := value.(string)

	return str
}

func boolDefault(value any) bool {
	b, _ := value.(bool)

	return b
}

func intDefault(value any) int {
	i, _ := value.(int)

	return i
}

func durationDefault(value any) time.Duration {
	switch d := value.(type) {
	case metav1.Duration:
		return d.Duration
	case time.Duration:
		return d
	default:
		return 0
	}
}
