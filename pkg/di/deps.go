package di

import (
	"fmt"

	clusterprovisioner "github.com/kroft-dev/kroft/pkg/svc/provisioner/cluster"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// NewRuntime builds the container the root command hands to every
// subcommand. It registers the stage timer and the dev cluster provisioner
// factory, the two dependencies handlers resolve by type.
func NewRuntime() *Runtime {
	return New(
		provide(func() timer.Timer { return timer.New() }),
		provide(func() clusterprovisioner.Factory {
			return clusterprovisioner.DefaultFactory{}
		}),
	)
}

// provide builds a Module registering a lazily constructed dependency. The
// build function runs on first resolution, not at registration.
func provide[T any](build func() T) Module {
	return func(injector Injector) error {
		do.Provide(injector, func(Injector) (T, error) {
			return build(), nil
		})

		return nil
	}
}

// resolve retrieves a dependency by type, naming it in the error when the
// injector has no matching registration.
func resolve[T any](injector Injector, name string) (T, error) {
	value, err := do.Invoke[T](injector)
	if err != nil {
		var zero T

		return zero, fmt.Errorf("resolve %s dependency: %w", name, err)
	}

	return value, nil
}

// ResolveTimer retrieves the stage timer registered by NewRuntime.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	return resolve[timer.Timer](injector, "timer")
}

// ResolveClusterProvisionerFactory retrieves the dev cluster provisioner
// factory registered by NewRuntime.
func ResolveClusterProvisionerFactory(
	injector Injector,
) (clusterprovisioner.Factory, error) {
	return resolve[clusterprovisioner.Factory](injector, "provisioner factory")
}

// WithTimer resolves the timer before running the handler so command bodies
// receive it directly instead of repeating the lookup.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, tmr)
	}
}
