package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	fcolor "github.com/fatih/color"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// ProgressLabels holds the per-state status text shown next to each task.
type ProgressLabels struct {
	// Pending is shown for tasks that have not started yet.
	Pending string
	// Running is shown while a task executes.
	Running string
	// Completed is shown for tasks that finished successfully.
	Completed string
}

// DefaultLabels returns generic task labels.
func DefaultLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "running", Completed: "completed"}
}

// WaitingLabels returns labels for reachability waits.
func WaitingLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "waiting", Completed: "reachable"}
}

// JoiningLabels returns labels for nodes joining a cluster.
func JoiningLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "joining", Completed: "joined"}
}

// InstallingLabels returns labels for component installation tasks.
func InstallingLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "installing", Completed: "installed"}
}

// ProgressTask is a named unit of work run under a ProgressGroup.
type ProgressTask struct {
	// Name is the display name, typically a node or component name.
	Name string
	// Fn does the work. The context is cancelled when a sibling task fails.
	Fn func(ctx context.Context) error
}

// ProgressGroup runs tasks in parallel and renders one status line per task
// under a title line. On a TTY the lines are redrawn in place with a spinner;
// on non-TTY writers (CI, pipes) only state transitions are printed.
type ProgressGroup struct {
	title  string
	emoji  string
	labels ProgressLabels
	writer io.Writer
	timer  timer.Timer
	isTTY  bool

	mu          sync.Mutex
	states      map[string]taskState
	order       []string
	startOrder  []string
	spinnerIdx  int
	stopSpinner chan struct{}
	spinnerDone chan struct{}
	linesDrawn  int
}

type taskState int

const (
	taskPending taskState = iota
	taskRunning
	taskComplete
	taskFailed
)

const spinnerTickInterval = 100 * time.Millisecond

func spinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}

// ProgressOption configures a ProgressGroup.
type ProgressOption func(*ProgressGroup)

// WithLabels overrides the per-state status text.
func WithLabels(labels ProgressLabels) ProgressOption {
	return func(pg *ProgressGroup) {
		pg.labels = labels
	}
}

// WithTimer enables a timing block after all tasks succeed.
func WithTimer(tmr timer.Timer) ProgressOption {
	return func(pg *ProgressGroup) {
		pg.timer = tmr
	}
}

// NewProgressGroup creates a ProgressGroup with the given title line. The
// writer defaults to os.Stdout and the emoji to the activity symbol.
func NewProgressGroup(title, emoji string, writer io.Writer, opts ...ProgressOption) *ProgressGroup {
	if writer == nil {
		writer = os.Stdout
	}

	if emoji == "" {
		emoji = "►"
	}

	isTTY := false
	if file, ok := writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(file.Fd()))
	}

	group := &ProgressGroup{
		title:       title,
		emoji:       emoji,
		labels:      DefaultLabels(),
		writer:      writer,
		isTTY:       isTTY,
		states:      make(map[string]taskState),
		stopSpinner: make(chan struct{}),
		spinnerDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(group)
	}

	return group
}

// Run executes all tasks in parallel and blocks until they finish. The first
// task error cancels the remaining tasks and is returned.
func (pg *ProgressGroup) Run(ctx context.Context, tasks ...ProgressTask) error {
	if len(tasks) == 0 {
		return nil
	}

	for _, task := range tasks {
		pg.states[task.Name] = taskPending
		pg.order = append(pg.order, task.Name)
	}

	if pg.timer != nil {
		pg.timer.NewStage()
	}

	_, _ = fmt.Fprintf(pg.writer, "%s %s...\n", pg.emoji, pg.title)

	if pg.isTTY {
		return pg.runInteractive(ctx, tasks)
	}

	return pg.runPlain(ctx, tasks)
}

func (pg *ProgressGroup) runInteractive(ctx context.Context, tasks []ProgressTask) error {
	pg.drawInitialLines()

	go pg.animate()

	group, groupCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		group.Go(func() error {
			pg.setState(task.Name, taskRunning)

			taskErr := task.Fn(groupCtx)
			if taskErr != nil {
				pg.setState(task.Name, taskFailed)

				return fmt.Errorf("%s: %w", task.Name, taskErr)
			}

			pg.setState(task.Name, taskComplete)

			return nil
		})
	}

	err := group.Wait()

	close(pg.stopSpinner)
	<-pg.spinnerDone

	pg.redrawLines()

	if err == nil && pg.timer != nil {
		pg.printTiming()
	}

	if err != nil {
		return fmt.Errorf("parallel execution: %w", err)
	}

	return nil
}

// runPlain prints one line per state transition, suitable for logs.
func (pg *ProgressGroup) runPlain(ctx context.Context, tasks []ProgressTask) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		group.Go(func() error {
			pg.mu.Lock()
			pg.states[task.Name] = taskRunning
			_, _ = fmt.Fprintf(pg.writer, "► %s %s\n", task.Name, pg.labels.Running)
			pg.mu.Unlock()

			taskErr := task.Fn(groupCtx)

			pg.mu.Lock()

			if taskErr != nil {
				pg.states[task.Name] = taskFailed
				_, _ = fcolor.New(fcolor.FgRed).Fprintf(pg.writer, "✗ %s failed\n", task.Name)
			} else {
				pg.states[task.Name] = taskComplete
				_, _ = fcolor.New(fcolor.FgGreen).Fprintf(pg.writer, "✔ %s %s\n", task.Name, pg.labels.Completed)
			}

			pg.mu.Unlock()

			if taskErr != nil {
				return fmt.Errorf("%s: %w", task.Name, taskErr)
			}

			return nil
		})
	}

	err := group.Wait()

	if err == nil && pg.timer != nil {
		pg.printTiming()
	}

	if err != nil {
		return fmt.Errorf("parallel execution: %w", err)
	}

	return nil
}

func (pg *ProgressGroup) printTiming() {
	total, stage := pg.timer.GetTiming()
	successColor := fcolor.New(fcolor.FgGreen)
	_, _ = successColor.Fprintf(pg.writer, "⏲ current: %s\n", stage.String())
	_, _ = successColor.Fprintf(pg.writer, "  total:  %s\n", total.String())
}

func (pg *ProgressGroup) setState(name string, state taskState) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if state == taskRunning && pg.states[name] == taskPending {
		pg.startOrder = append(pg.startOrder, name)
	}

	pg.states[name] = state
}

func (pg *ProgressGroup) animate() {
	defer close(pg.spinnerDone)

	frames := spinnerFrames()
	ticker := time.NewTicker(spinnerTickInterval)

	defer ticker.Stop()

	for {
		select {
		case <-pg.stopSpinner:
			return
		case <-ticker.C:
			pg.mu.Lock()
			pg.spinnerIdx = (pg.spinnerIdx + 1) % len(frames)
			pg.mu.Unlock()
			pg.redrawLines()
		}
	}
}

func (pg *ProgressGroup) drawInitialLines() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	for _, name := range pg.order {
		_, _ = fmt.Fprintln(pg.writer, pg.formatLine(name, pg.states[name]))
	}

	pg.linesDrawn = len(pg.order)
}

// redrawLines moves the cursor up and repaints every task line. Running tasks
// are shown in start order with pending tasks at the bottom.
func (pg *ProgressGroup) redrawLines() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.linesDrawn == 0 {
		return
	}

	_, _ = fmt.Fprintf(pg.writer, "\033[%dA", pg.linesDrawn)

	for _, name := range pg.displayOrder() {
		_, _ = fmt.Fprint(pg.writer, "\033[K")
		_, _ = fmt.Fprintln(pg.writer, pg.formatLine(name, pg.states[name]))
	}
}

// displayOrder must be called with the mutex held.
func (pg *ProgressGroup) displayOrder() []string {
	started := make(map[string]bool, len(pg.startOrder))
	for _, name := range pg.startOrder {
		started[name] = true
	}

	result := make([]string, 0, len(pg.order))
	result = append(result, pg.startOrder...)

	for _, name := range pg.order {
		if !started[name] {
			result = append(result, name)
		}
	}

	return result
}

func (pg *ProgressGroup) formatLine(name string, state taskState) string {
	frames := spinnerFrames()

	switch state {
	case taskPending:
		return fcolor.New(fcolor.FgHiBlack).Sprintf("○ %s %s", name, pg.labels.Pending)
	case taskRunning:
		return fcolor.New(fcolor.FgCyan).Sprintf("%s %s %s", frames[pg.spinnerIdx], name, pg.labels.Running)
	case taskComplete:
		return fcolor.New(fcolor.FgGreen).Sprintf("✔ %s %s", name, pg.labels.Completed)
	case taskFailed:
		return fcolor.New(fcolor.FgRed).Sprintf("✗ %s failed", name)
	default:
		return fmt.Sprintf("? %s unknown", name)
	}
}
