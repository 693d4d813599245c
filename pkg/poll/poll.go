// Package poll provides the single polling primitive used for every wait in
// kroft: SSH reachability, K3s service activity, node and API server
// readiness, deployment rollouts, and CRD establishment.
//
// A [Condition] reports (true, nil) when the awaited state is reached,
// (false, nil) to keep polling, and a non-nil error to abort immediately.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siderolabs/go-retry/retry"
)

// ErrTimeoutExceeded is returned when a condition does not hold before the
// timeout elapses.
var ErrTimeoutExceeded = errors.New("timeout exceeded")

// ErrAttemptsExhausted is returned when a condition does not hold within the
// allowed number of attempts.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// Condition is a single readiness probe. Transient failures inside the probe
// should be swallowed and reported as (false, nil) so polling continues;
// returning an error aborts the poll.
type Condition func(ctx context.Context) (done bool, err error)

// Until polls cond every interval until it reports done, returns an error, or
// timeout elapses. The condition is evaluated immediately on entry.
func Until(ctx context.Context, interval, timeout time.Duration, cond Condition) error {
	var terminalErr error

	err := retry.Constant(timeout, retry.WithUnits(interval)).RetryWithContext(ctx,
		func(ctx context.Context) error {
			done, condErr := cond(ctx)
			if condErr != nil {
				terminalErr = condErr

				return condErr
			}

			if !done {
				return retry.ExpectedErrorf("condition not met")
			}

			return nil
		})
	if err == nil {
		return nil
	}

	if terminalErr != nil {
		return terminalErr
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("polling aborted: %w", ctxErr)
	}

	return fmt.Errorf("%w after %s", ErrTimeoutExceeded, timeout)
}

// UntilAttempts polls cond at most attempts times spaced interval apart. It
// returns nil as soon as the condition holds, the condition's own error when
// it aborts, or ErrAttemptsExhausted once the attempt budget is spent.
func UntilAttempts(ctx context.Context, interval time.Duration, attempts int, cond Condition) error {
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		done, err := cond(ctx)
		if err != nil {
			return err
		}

		if done {
			return nil
		}

		if attempt == attempts {
			break
		}

		if err := wait(ctx, interval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w (%d attempts)", ErrAttemptsExhausted, attempts)
}

// wait sleeps for delay unless the context is cancelled first.
func wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("polling aborted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
