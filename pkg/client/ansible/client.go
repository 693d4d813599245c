// Package ansible wraps ansible-playbook for configuring cluster nodes after
// first boot.
package ansible

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"time"

	"github.com/kroft-dev/kroft/pkg/poll"
)

const (
	// DefaultBinary is the ansible-playbook executable resolved from PATH.
	DefaultBinary = "ansible-playbook"

	// DefaultAttempts is how often a playbook run is retried. Node
	// configuration right after first boot fails transiently (apt locks,
	// services still starting), so one retry budget covers the common cases.
	DefaultAttempts = 3

	// DefaultRecoveryWait is the pause between attempts.
	DefaultRecoveryWait = 10 * time.Second

	outputTailLimit = 2048
)

// RunOptions configures a playbook run.
type RunOptions struct {
	// Inventory is the path of the inventory file passed via -i.
	Inventory string
	// ExtraVars are passed as --extra-vars key=value flags.
	ExtraVars map[string]string
	// Tags limits the run to the given playbook tags.
	Tags []string
	// Attempts overrides DefaultAttempts when positive.
	Attempts int
	// RecoveryWait overrides DefaultRecoveryWait when positive.
	RecoveryWait time.Duration
}

// Client runs ansible playbooks.
type Client struct {
	// Binary is the ansible-playbook executable. Defaults to DefaultBinary.
	Binary string
	// Writer receives the streamed playbook output.
	Writer io.Writer
}

// NewClient creates an ansible client streaming output to writer.
func NewClient(writer io.Writer) *Client {
	return &Client{
		Binary: DefaultBinary,
		Writer: writer,
	}
}

// RunPlaybook executes the playbook, retrying failed runs with a recovery
// pause in between. Retries run with increased verbosity so the attempt that
// finally fails has diagnosable output.
func (c *Client) RunPlaybook(ctx context.Context, playbook string, opts RunOptions) error {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	recoveryWait := opts.RecoveryWait
	if recoveryWait <= 0 {
		recoveryWait = DefaultRecoveryWait
	}

	var (
		attempt int
		lastErr error
	)

	err := poll.UntilAttempts(ctx, recoveryWait, attempts, func(ctx context.Context) (bool, error) {
		attempt++

		runErr := c.runOnce(ctx, playbook, opts, attempt)
		if runErr != nil {
			lastErr = runErr

			return false, nil
		}

		return true, nil
	})
	if err != nil {
		if lastErr != nil {
			return fmt.Errorf("run playbook %s: %w: %w", playbook, err, lastErr)
		}

		return fmt.Errorf("run playbook %s: %w", playbook, err)
	}

	return nil
}

func (c *Client) runOnce(
	ctx context.Context,
	playbook string,
	opts RunOptions,
	attempt int,
) error {
	args := buildArgs(playbook, opts, attempt)

	binary := c.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	var tail tailBuffer

	writer := io.Writer(&tail)
	if c.Writer != nil {
		writer = io.MultiWriter(c.Writer, &tail)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = writer
	cmd.Stderr = writer

	err := cmd.Run()
	if err != nil {
		if tailText := tail.String(); tailText != "" {
			return fmt.Errorf("attempt %d: %w: %s", attempt, err, tailText)
		}

		return fmt.Errorf("attempt %d: %w", attempt, err)
	}

	return nil
}

// buildArgs assembles the ansible-playbook argument list. From the second
// attempt on the run is verbose.
func buildArgs(playbook string, opts RunOptions, attempt int) []string {
	var args []string

	if opts.Inventory != "" {
		args = append(args, "-i", opts.Inventory)
	}

	if attempt > 1 {
		args = append(args, "-vv")
	}

	keys := make([]string, 0, len(opts.ExtraVars))
	for key := range opts.ExtraVars {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		args = append(args, "--extra-vars", key+"="+opts.ExtraVars[key])
	}

	for _, tag := range opts.Tags {
		args = append(args, "--tags", tag)
	}

	return append(args, playbook)
}

// tailBuffer keeps the last chunk of output for error reporting.
type tailBuffer struct {
	buf bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf.Write(p)

	if t.buf.Len() > outputTailLimit {
		data := t.buf.Bytes()
		trimmed := make([]byte, outputTailLimit)
		copy(trimmed, data[len(data)-outputTailLimit:])
		t.buf.Reset()
		t.buf.Write(trimmed)
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(bytes.TrimSpace(t.buf.Bytes()))
}
