// Package configmanager loads and validates kroft's v1alpha1.Cluster
// configuration.
//
// It resolves kroft.yaml, KROFT_ environment variables and command flags
// into a single typed document, with field selectors doubling as the source
// of the CLI flags each command exposes.
//
// The package shares its name with the parent pkg/io/config-manager, so
// importers alias it:
//
//	import kroftconfigmanager "github.com/kroft-dev/kroft/pkg/io/config-manager/kroft"
package configmanager
