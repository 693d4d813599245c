package readiness

import (
	"context"
	"time"

	"k8s.io/client-go/kubernetes"
)

// WaitForAPIServerReady polls the API server until it answers a discovery
// request or the timeout elapses.
func WaitForAPIServerReady(ctx context.Context, clientset kubernetes.Interface, timeout time.Duration) error {
	return WaitForAPIServerStable(ctx, clientset, 1, timeout)
}

// WaitForAPIServerStable polls the API server until it answers the given
// number of consecutive discovery requests. A single success is not enough
// right after bootstrap: K3s restarts the apiserver while admission webhooks
// register, so one probe can succeed moments before the next one fails.
func WaitForAPIServerStable(ctx context.Context, clientset kubernetes.Interface, requiredSuccesses int, timeout time.Duration) error {
	if requiredSuccesses < 1 {
		requiredSuccesses = 1
	}

	streak := 0

	return PollForReadiness(ctx, timeout, func(_ context.Context) (bool, error) {
		_, err := clientset.Discovery().ServerVersion()
		if err != nil {
			streak = 0

			return false, nil //nolint:nilerr // a failed probe keeps the poll going
		}

		streak++

		return streak >= requiredSuccesses, nil
	})
}
