package notify_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

var errTaskFailed = errors.New("task failed")

func TestProgressGroup_Run(t *testing.T) {
	t.Parallel()

	t.Run("no_tasks_is_a_noop", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		group := notify.NewProgressGroup("Waiting for nodes", "🔌", &out)

		err := group.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if out.Len() != 0 {
			t.Fatalf("expected no output, got %q", out.String())
		}
	})

	t.Run("prints_title_and_transitions", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		group := notify.NewProgressGroup(
			"Joining workers", "🔗", &out,
			notify.WithLabels(notify.JoiningLabels()),
		)

		err := group.Run(context.Background(),
			notify.ProgressTask{Name: "pi-worker-1", Fn: func(context.Context) error { return nil }},
			notify.ProgressTask{Name: "pi-worker-2", Fn: func(context.Context) error { return nil }},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := out.String()

		if !strings.Contains(got, "🔗 Joining workers...\n") {
			t.Fatalf("missing title in %q", got)
		}

		for _, want := range []string{"► pi-worker-1 joining", "✔ pi-worker-1 joined", "✔ pi-worker-2 joined"} {
			if !strings.Contains(got, want) {
				t.Fatalf("missing %q in %q", want, got)
			}
		}
	})

	t.Run("failed_task_returns_named_error", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		group := notify.NewProgressGroup("Waiting for nodes", "🔌", &out,
			notify.WithLabels(notify.WaitingLabels()))

		err := group.Run(context.Background(),
			notify.ProgressTask{Name: "pi-master", Fn: func(context.Context) error { return errTaskFailed }},
		)

		if !errors.Is(err, errTaskFailed) {
			t.Fatalf("expected wrapped task error, got %v", err)
		}

		if !strings.Contains(err.Error(), "pi-master") {
			t.Fatalf("error should name the failed task: %v", err)
		}

		if !strings.Contains(out.String(), "✗ pi-master failed") {
			t.Fatalf("missing failure line in %q", out.String())
		}
	})
}
