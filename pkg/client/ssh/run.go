package ssh

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	cryptossh "golang.org/x/crypto/ssh"
)

// stderrTailLines bounds how much stderr a failed command carries into its
// error message.
const stderrTailLines = 5

// Run executes command on the node and returns its stdout. A failed command
// reports the exit error together with the tail of stderr.
func (c *Client) Run(ctx context.Context, command string) (string, error) {
	if c.client == nil {
		return "", ErrNotConnected
	}

	session, err := c.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open ssh session: %w", err)
	}

	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer

	session.Stdout = &stdout
	session.Stderr = &stderr

	err = c.waitSession(ctx, session, command)
	if err != nil {
		return stdout.String(), c.commandError(command, err, stderr.String())
	}

	return stdout.String(), nil
}

// Sudo runs command through sudo.
func (c *Client) Sudo(ctx context.Context, command string) (string, error) {
	return c.Run(ctx, sudoCommand(command))
}

// UploadFile writes content to remotePath on the node with the given octal
// mode (e.g. "0600"), creating parent directories. The write goes through
// sudo so privileged destinations work.
func (c *Client) UploadFile(
	ctx context.Context,
	content []byte,
	remotePath string,
	mode string,
) error {
	if c.client == nil {
		return ErrNotConnected
	}

	session, err := c.client.NewSession()
	if err != nil {
		return fmt.Errorf("open ssh session: %w", err)
	}

	defer func() { _ = session.Close() }()

	var stderr bytes.Buffer

	session.Stdin = bytes.NewReader(content)
	session.Stderr = &stderr

	command := fmt.Sprintf("sudo install -D -m %s /dev/stdin %s", mode, shellQuote(remotePath))

	err = c.waitSession(ctx, session, command)
	if err != nil {
		return c.commandError(command, err, stderr.String())
	}

	return nil
}

// waitSession starts the command and waits for it, aborting the session when
// the context is cancelled.
func (c *Client) waitSession(
	ctx context.Context,
	session *cryptossh.Session,
	command string,
) error {
	err := session.Start(command)
	if err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	done := make(chan error, 1)

	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		_ = session.Signal(cryptossh.SIGKILL)
		_ = session.Close()
		<-done

		return fmt.Errorf("command aborted: %w", ctx.Err())
	case waitErr := <-done:
		return waitErr
	}
}

func (c *Client) commandError(command string, err error, stderr string) error {
	tail := stderrTail(stderr)
	if tail == "" {
		return fmt.Errorf("run %q on %s: %w", command, c.config.Host, err)
	}

	return fmt.Errorf("run %q on %s: %w: %s", command, c.config.Host, err, tail)
}

func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")

	filtered := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			filtered = append(filtered, line)
		}
	}

	if len(filtered) > stderrTailLines {
		filtered = filtered[len(filtered)-stderrTailLines:]
	}

	return strings.Join(filtered, "; ")
}

func sudoCommand(command string) string {
	return "sudo sh -c " + shellQuote(command)
}

// shellQuote single-quotes s for remote shell execution.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
