// Package confirm gates destructive operations behind an interactive prompt.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/kroft-dev/kroft/pkg/apis/cluster/v1alpha1"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

// ErrTeardownCancelled is returned when the user declines a teardown.
var ErrTeardownCancelled = errors.New("teardown cancelled")

// TeardownPreview lists everything a teardown touches.
type TeardownPreview struct {
	ClusterName string
	Nodes       []v1alpha1.Node
}

// Seams for prompt input and terminal detection, swapped by tests.
//
//nolint:gochecknoglobals // test seams
var (
	seamMu       sync.RWMutex
	stdinSeam    io.Reader
	ttyCheckSeam func() bool
)

// SetStdinReaderForTests redirects prompt input. The returned func restores
// the previous reader.
func SetStdinReaderForTests(reader io.Reader) func() {
	seamMu.Lock()
	previous := stdinSeam
	stdinSeam = reader
	seamMu.Unlock()

	return func() {
		seamMu.Lock()
		stdinSeam = previous
		seamMu.Unlock()
	}
}

// SetTTYCheckerForTests redirects terminal detection. The returned func
// restores the previous checker.
func SetTTYCheckerForTests(checker func() bool) func() {
	seamMu.Lock()
	previous := ttyCheckSeam
	ttyCheckSeam = checker
	seamMu.Unlock()

	return func() {
		seamMu.Lock()
		ttyCheckSeam = previous
		seamMu.Unlock()
	}
}

func promptInput() io.Reader {
	seamMu.RLock()
	defer seamMu.RUnlock()

	if stdinSeam != nil {
		return stdinSeam
	}

	return os.Stdin
}

// IsTTY reports whether stdin is a terminal. Prompts are skipped entirely in
// non interactive runs such as CI pipelines.
func IsTTY() bool {
	seamMu.RLock()
	check := ttyCheckSeam
	seamMu.RUnlock()

	if check != nil {
		return check()
	}

	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// ShouldSkipPrompt reports whether the confirmation prompt is bypassed,
// either by the force flag or because no terminal is attached.
func ShouldSkipPrompt(force bool) bool {
	return force || !IsTTY()
}

// ShowTeardownPreview displays the cluster and the nodes a teardown will
// reach over SSH.
func ShowTeardownPreview(writer io.Writer, preview *TeardownPreview) {
	notify.WriteMessage(notify.Message{
		Type:    notify.WarningType,
		Content: "The following resources will be torn down:",
		Writer:  writer,
	})

	lines := []string{fmt.Sprintf("  Cluster: %s", preview.ClusterName)}

	if len(preview.Nodes) > 0 {
		lines = append(lines, "  Nodes:")

		for _, node := range preview.Nodes {
			lines = append(lines, fmt.Sprintf("    - %s (%s)", node.Name, node.Address))
		}
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.InfoType,
		Content: strings.Join(lines, "\n"),
		Writer:  writer,
	})
}

// PromptForConfirmation reads one line from the prompt input and accepts
// only "yes", case insensitively.
func PromptForConfirmation(writer io.Writer) bool {
	notify.WriteMessage(notify.Message{
		Type:    notify.WarningType,
		Content: `Type "yes" to confirm teardown: `,
		Writer:  writer,
	})

	line, err := bufio.NewReader(promptInput()).ReadString('\n')
	if err != nil {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
