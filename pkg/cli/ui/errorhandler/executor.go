// Package errorhandler shapes Cobra execution failures into single, readable
// messages. Cobra writes its own "Error: ..." line to stderr and returns the
// error as well; Run captures the stream so the caller prints one message.
package errorhandler

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
)

// Run executes the command while capturing Cobra's error stream. It returns
// nil on success, or a *CommandError carrying the normalized stderr text and
// the original error for errors.Is chains.
func Run(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var stderr bytes.Buffer

	original := cmd.ErrOrStderr()

	cmd.SetErr(&stderr)
	defer cmd.SetErr(original)

	err := cmd.Execute()
	if err == nil {
		return nil
	}

	return &CommandError{
		message: Normalize(stderr.String()),
		cause:   err,
	}
}

// CommandError pairs the normalized stderr output with the causing error.
type CommandError struct {
	message string
	cause   error
}

// Error renders the message, appending the cause when the message does not
// already contain it.
func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}

	if e.message == "" {
		if e.cause == nil {
			return ""
		}

		return e.cause.Error()
	}

	if e.cause == nil || strings.Contains(e.message, e.cause.Error()) {
		return e.message
	}

	return e.message + ": " + e.cause.Error()
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// Normalize trims the captured stream and strips Cobra's "Error: " prefix
// from the first line, keeping any usage hint lines that follow.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	lines[0] = strings.TrimPrefix(strings.TrimSpace(lines[0]), "Error: ")

	return strings.Join(lines, "\n")
}
