// Package configmanager defines the loading contract shared by the typed
// configuration managers in its subpackages.
package configmanager

import (
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

// LoadOptions adjusts a single Load call.
type LoadOptions struct {
	// Timer is included in loading notifications when set.
	Timer timer.Timer
	// Silent drops loading notifications entirely.
	Silent bool
	// IgnoreConfigFile resolves from flags and defaults only, without
	// reading kroft.yaml.
	IgnoreConfigFile bool
	// SkipValidation returns the config without validating it, for
	// commands that read a single field such as the kubeconfig path.
	SkipValidation bool
}

// ConfigManager loads a typed configuration document.
type ConfigManager[T any] interface {
	// Load resolves the configuration, reusing the cached result on
	// repeat calls.
	Load(opts LoadOptions) (*T, error)
}
