// Package di wires the runtime dependencies commands resolve at execution
// time. Each invocation gets a fresh injector so commands never observe each
// other's state.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency injection container handle passed to modules
// and handlers.
type Injector = do.Injector

// Module registers one or more dependencies with an injector.
type Module func(Injector) error

// Runtime owns the module list and builds a fresh injector per invocation.
type Runtime struct {
	modules []Module
}

// New creates a runtime from the given modules. Modules run in order on
// every Invoke.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke builds an injector, applies the runtime's modules plus any extras,
// and runs the handler. The injector is shut down when the handler returns.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()
	defer func() { _ = injector.Shutdown() }()

	for _, module := range r.modules {
		err := applyModule(injector, module)
		if err != nil {
			return err
		}
	}

	for _, module := range extra {
		err := applyModule(injector, module)
		if err != nil {
			return err
		}
	}

	return handler(injector)
}

// RunEWithRuntime adapts an injector-aware handler into a cobra RunE.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}

func applyModule(injector Injector, module Module) error {
	if module == nil {
		return nil
	}

	return module(injector)
}
