// Package docker provides access to the local container engine for the
// development cluster provisioners.
package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
)

// Error definitions for container engine operations.
var (
	// ErrAPIClientNil is returned when a nil engine client is provided.
	ErrAPIClientNil = errors.New("docker API client cannot be nil")

	// ErrEngineNotAvailable is returned when the Docker daemon does not answer a ping.
	ErrEngineNotAvailable = errors.New("docker engine is not available (is the Docker daemon running?)")
)

// Pinger is the subset of the Docker API client needed for reachability checks.
type Pinger interface {
	Ping(ctx context.Context) (types.Ping, error)
}

// GetDockerClient creates a Docker client using environment configuration.
func GetDockerClient() (client.APIClient, error) {
	dockerClient, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return dockerClient, nil
}

// EnsureEngineReady verifies that the Docker daemon answers a ping. The
// development cluster provisioners call this before creating containers so a
// stopped engine surfaces as a clear message instead of a socket error.
func EnsureEngineReady(ctx context.Context, engine Pinger) error {
	if engine == nil {
		return ErrAPIClientNil
	}

	_, err := engine.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineNotAvailable, err)
	}

	return nil
}
