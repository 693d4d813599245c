// Package parallel bounds fan-out across cluster nodes. Bootstrap and status
// touch every node at once over SSH, and a rack of Raspberry Pis handles a
// handful of concurrent sessions gracefully but not dozens.
package parallel

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Worker pool bounds. The ceiling keeps node fan-out from overwhelming SSH
// daemons on small boards, whatever the host CPU count says.
const (
	minWorkers = 2
	maxWorkers = 8
)

// defaultWorkers sizes the pool from the host CPU count, clamped to the pool
// bounds.
func defaultWorkers() int {
	return min(max(runtime.NumCPU(), minWorkers), maxWorkers)
}

// Task is one unit of work scheduled onto the pool.
type Task func(ctx context.Context) error

// Executor runs tasks concurrently with a bounded worker count.
type Executor struct {
	workers int
}

// NewExecutor returns an executor running at most workers tasks at once.
// Zero or a negative count sizes the pool from the host CPU count.
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = defaultWorkers()
	}

	return &Executor{workers: workers}
}

// Execute runs every task and waits for all of them. The first task error
// cancels the shared context and is returned; tasks that have not started by
// then are skipped.
func (executor *Executor) Execute(ctx context.Context, tasks ...Task) error {
	switch len(tasks) {
	case 0:
		return nil
	case 1:
		return tasks[0](ctx)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(executor.workers)

	for _, task := range tasks {
		group.Go(func() error {
			// A failed task cancels groupCtx. Queued tasks bail out here
			// instead of dialing nodes the run has already given up on.
			ctxErr := groupCtx.Err()
			if ctxErr != nil {
				return fmt.Errorf("fan-out canceled: %w", ctxErr)
			}

			return task(groupCtx)
		})
	}

	waitErr := group.Wait()
	if waitErr != nil {
		return fmt.Errorf("parallel execution: %w", waitErr)
	}

	return nil
}

// SyncWriter serializes writes from concurrent tasks so interleaved node
// output stays line-coherent.
type SyncWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSyncWriter wraps out with a mutex.
func NewSyncWriter(out io.Writer) *SyncWriter {
	return &SyncWriter{out: out}
}

// Write implements io.Writer.
func (writer *SyncWriter) Write(data []byte) (int, error) {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	written, err := writer.out.Write(data)
	if err != nil {
		return written, fmt.Errorf("synchronized write: %w", err)
	}

	return written, nil
}

// ErrorList collects errors from concurrent tasks. Teardown uses it to keep
// going when individual nodes fail and report every failure afterwards.
type ErrorList struct {
	mu   sync.Mutex
	errs []error
}

// NewErrorList returns an empty collector.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add records one error. Nil errors are ignored.
func (list *ErrorList) Add(err error) {
	if err == nil {
		return
	}

	list.mu.Lock()
	defer list.mu.Unlock()

	list.errs = append(list.errs, err)
}

// All returns the recorded errors in insertion order.
func (list *ErrorList) All() []error {
	list.mu.Lock()
	defer list.mu.Unlock()

	return slices.Clone(list.errs)
}
