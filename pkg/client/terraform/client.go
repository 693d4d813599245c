// Package terraform wraps the terraform binary for managing the
// infrastructure definitions that live alongside a kroft project.
package terraform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// DefaultBinary is the terraform executable resolved from PATH.
const DefaultBinary = "terraform"

// ErrWorkDirRequired indicates no working directory was configured.
var ErrWorkDirRequired = errors.New("terraform: working directory is required")

// Options configures a single terraform run.
type Options struct {
	// VarFiles are passed as -var-file flags.
	VarFiles []string
	// Vars are passed as -var 'key=value' flags.
	Vars map[string]string
}

// Client runs terraform commands in a fixed working directory.
type Client struct {
	// Binary is the terraform executable. Defaults to DefaultBinary.
	Binary string
	// WorkDir is the directory holding the terraform module.
	WorkDir string
	// Writer receives the streamed terraform output.
	Writer io.Writer
}

// NewClient creates a terraform client for the given module directory.
func NewClient(workDir string, writer io.Writer) *Client {
	return &Client{
		Binary:  DefaultBinary,
		WorkDir: workDir,
		Writer:  writer,
	}
}

// Init runs terraform init.
func (c *Client) Init(ctx context.Context) error {
	return c.run(ctx, "init", nil)
}

// Plan runs terraform plan after ensuring the module is initialized.
func (c *Client) Plan(ctx context.Context, opts Options) error {
	err := c.ensureInit(ctx)
	if err != nil {
		return err
	}

	return c.run(ctx, "plan", buildVarArgs(opts))
}

// Apply runs terraform apply -auto-approve after ensuring the module is
// initialized.
func (c *Client) Apply(ctx context.Context, opts Options) error {
	err := c.ensureInit(ctx)
	if err != nil {
		return err
	}

	return c.run(ctx, "apply", append([]string{"-auto-approve"}, buildVarArgs(opts)...))
}

// Destroy runs terraform destroy -auto-approve after ensuring the module is
// initialized.
func (c *Client) Destroy(ctx context.Context, opts Options) error {
	err := c.ensureInit(ctx)
	if err != nil {
		return err
	}

	return c.run(ctx, "destroy", append([]string{"-auto-approve"}, buildVarArgs(opts)...))
}

// ensureInit initializes the module when its .terraform directory is absent.
func (c *Client) ensureInit(ctx context.Context) error {
	if c.WorkDir == "" {
		return ErrWorkDirRequired
	}

	_, err := os.Stat(filepath.Join(c.WorkDir, ".terraform"))
	if err == nil {
		return nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat terraform state directory: %w", err)
	}

	return c.Init(ctx)
}

func (c *Client) run(ctx context.Context, subcommand string, extraArgs []string) error {
	if c.WorkDir == "" {
		return ErrWorkDirRequired
	}

	args := commandArgs(c.WorkDir, subcommand, extraArgs)

	binary := c.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	// Output streams to the writer while the tail is captured so a failed
	// run carries context in its error.
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
			return fmt.Errorf("terraform %s: %w: %s", subcommand, err, tailText)
		}

		return fmt.Errorf("terraform %s: %w", subcommand, err)
	}

	return nil
}

// commandArgs assembles the full argument list for a terraform run.
func commandArgs(workDir string, subcommand string, extraArgs []string) []string {
	args := []string{"-chdir=" + workDir, subcommand, "-input=false"}

	return append(args, extraArgs...)
}

// buildVarArgs converts run options to -var-file/-var flags. Vars are sorted
// so runs are reproducible.
func buildVarArgs(opts Options) []string {
	var args []string

	for _, varFile := range opts.VarFiles {
		args = append(args, "-var-file="+varFile)
	}

	keys := make([]string, 0, len(opts.Vars))
	for key := range opts.Vars {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		args = append(args, "-var", key+"="+opts.Vars[key])
	}

	return args
}

// tailBuffer keeps the last chunk of output for error reporting.
type tailBuffer struct {
	buf bytes.Buffer
}

const tailLimit = 2048

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf.Write(p)

	if t.buf.Len() > tailLimit {
		data := t.buf.Bytes()
		trimmed := make([]byte, tailLimit)
		copy(trimmed, data[len(data)-tailLimit:])
		t.buf.Reset()
		t.buf.Write(trimmed)
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(bytes.TrimSpace(t.buf.Bytes()))
}
