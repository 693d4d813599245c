// Package netretry classifies transient network errors for the client
// packages (SSH, Helm, Docker) so their retry loops agree on what is worth
// retrying.
package netretry

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// httpStatusCodePattern matches HTTP 5xx status codes at word boundaries
// to avoid false positives on port numbers like ":5000".
var httpStatusCodePattern = regexp.MustCompile(`\b50[0-4]\b`)

// IsRetryable returns true if the error indicates a transient network error
// that should be retried. This covers HTTP 5xx status codes, TCP-level errors
// such as connection resets and timeouts, and the dial failures a node emits
// while it is still booting.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()

	// HTTP 5xx status text, TCP-level transient errors, and boot-time dial
	// failures. An sshd that is not up yet refuses, times out, or drops the
	// handshake with a bare EOF; an authentication failure does none of
	// these and must not be retried.
	textPatterns := []string{
		"Internal Server Error", "Bad Gateway",
		"Service Unavailable", "Gateway Timeout",
		"connection reset by peer", "connection refused",
		"connection timed out", "no route to host",
		"i/o timeout", "TLS handshake timeout",
		"handshake failed: EOF", "unexpected EOF",
		"no such host",
	}

	for _, pattern := range textPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return httpStatusCodePattern.MatchString(errMsg)
}

// ExponentialDelay returns the delay for the given retry attempt
// using exponential backoff.
// Uses the formula: min(baseWait * 2^(attempt-1), maxWait).
func ExponentialDelay(
	attempt int,
	baseWait, maxWait time.Duration,
) time.Duration {
	return min(baseWait*time.Duration(1<<(attempt-1)), maxWait)
}

// Wait sleeps for the exponential backoff delay of the given attempt. It
// returns the context error when cancelled before the delay elapses.
func Wait(ctx context.Context, attempt int, baseWait, maxWait time.Duration) error {
	timer := time.NewTimer(ExponentialDelay(attempt, baseWait, maxWait))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
