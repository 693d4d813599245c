// Package runner executes Cobra commands from CLI tools embedded as Go
// modules, such as the k3d command tree behind dev clusters, while capturing
// their output.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// CommandResult holds the stdout and stderr collected during a command
// execution, including output produced before an error occurred.
type CommandResult struct {
	Stdout string
	Stderr string
}

// CommandRunner executes Cobra commands while capturing their output.
type CommandRunner interface {
	Run(ctx context.Context, cmd *cobra.Command, args []string) (CommandResult, error)
}

// CobraCommandRunner runs any Cobra command, streaming output to the
// configured writers while keeping a copy for the result.
type CobraCommandRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// NewCobraCommandRunner creates a command runner. Output streams to stdout
// and stderr in real time, like running the wrapped binary directly, and is
// also captured in the CommandResult. Nil writers default to os.Stdout and
// os.Stderr.
func NewCobraCommandRunner(stdout, stderr io.Writer) *CobraCommandRunner {
	runner := &CobraCommandRunner{stdout: stdout, stderr: stderr}
	if runner.stdout == nil {
		runner.stdout = os.Stdout
	}

	if runner.stderr == nil {
		runner.stderr = os.Stderr
	}

	return runner
}

// Run executes the command with the given context and arguments. Usage and
// error echoing are silenced since callers handle error reporting. Output
// produced before a failure is retained in the result.
func (r *CobraCommandRunner) Run(
	ctx context.Context,
	cmd *cobra.Command,
	args []string,
) (CommandResult, error) {
	var capturedOut, capturedErr bytes.Buffer

	cmd.SetOut(io.MultiWriter(&capturedOut, r.stdout))
	cmd.SetErr(io.MultiWriter(&capturedErr, r.stderr))

	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	execErr := cmd.ExecuteContext(ctx)

	result := CommandResult{
		Stdout: capturedOut.String(),
		Stderr: capturedErr.String(),
	}

	if execErr != nil {
		return result, fmt.Errorf("embedded command failed: %w", execErr)
	}

	return result, nil
}
