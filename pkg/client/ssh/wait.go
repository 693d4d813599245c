package ssh

import (
	"context"
	"fmt"
	"time"

	"github.com/kroft-dev/kroft/pkg/client/netretry"
	"github.com/kroft-dev/kroft/pkg/poll"
)

// WaitForReady polls until the node accepts an SSH connection and runs a
// trivial command. Each attempt dials a fresh connection so a node that is
// still booting cannot wedge the wait on a half-open socket. Transient dial
// failures keep the poll going; authentication and configuration failures
// abort it.
func WaitForReady(ctx context.Context, config Config, interval, timeout time.Duration) error {
	// Broken auth configuration fails every attempt identically, so reject
	// it before burning the timeout.
	_, err := NewClient(config).clientConfig()
	if err != nil {
		return fmt.Errorf("wait for ssh on %s: %w", config.Address(), err)
	}

	err = poll.Until(ctx, interval, timeout, func(ctx context.Context) (bool, error) {
		client := NewClient(config)

		connectErr := client.Connect(ctx)
		if connectErr != nil {
			if netretry.IsRetryable(connectErr) {
				return false, nil
			}

			return false, connectErr
		}

		defer func() { _ = client.Close() }()

		_, runErr := client.Run(ctx, "true")

		return runErr == nil, nil
	})
	if err != nil {
		return fmt.Errorf("wait for ssh on %s: %w", config.Address(), err)
	}

	return nil
}
