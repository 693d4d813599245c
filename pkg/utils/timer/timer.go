// Package timer provides stage-aware elapsed time tracking for CLI commands.
package timer

import "time"

// Timer tracks elapsed time for a command run and its individual stages.
type Timer interface {
	// Start begins timing. Calling Start again resets both the total and the
	// current stage.
	Start()
	// NewStage marks the start of a new stage without resetting the total.
	NewStage()
	// GetTiming returns the total elapsed time and the elapsed time of the
	// current stage, rounded to the nearest millisecond.
	GetTiming() (total, stage time.Duration)
}

type clockTimer struct {
	start      time.Time
	stageStart time.Time
	now        func() time.Time
}

// New creates a Timer backed by the wall clock.
func New() Timer {
	return &clockTimer{now: time.Now}
}

func (t *clockTimer) Start() {
	started := t.now()
	t.start = started
	t.stageStart = started
}

func (t *clockTimer) NewStage() {
	if t.start.IsZero() {
		t.Start()

		return
	}

	t.stageStart = t.now()
}

func (t *clockTimer) GetTiming() (time.Duration, time.Duration) {
	if t.start.IsZero() {
		return 0, 0
	}

	current := t.now()
	total := current.Sub(t.start).Round(time.Millisecond)
	stage := current.Sub(t.stageStart).Round(time.Millisecond)

	return total, stage
}
