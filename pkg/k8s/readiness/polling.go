package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/kroft-dev/kroft/pkg/poll"
)

// DefaultPollInterval is the interval between readiness probes. Homelab
// clusters are small, so a sub-second interval keeps waits responsive
// without hammering the API server.
const DefaultPollInterval = 500 * time.Millisecond

// PollForReadiness polls the given condition until it reports done or the
// timeout elapses. All readiness waits in this package go through here so
// they share one retry implementation.
func PollForReadiness(ctx context.Context, timeout time.Duration, condition poll.Condition) error {
	if err := poll.Until(ctx, DefaultPollInterval, timeout, condition); err != nil {
		return fmt.Errorf("failed to poll for readiness: %w", err)
	}

	return nil
}
