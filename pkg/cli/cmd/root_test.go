package cmd_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroft-dev/kroft/pkg/cli/cmd"
	"github.com/kroft-dev/kroft/pkg/cli/helpers"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
	"github.com/kroft-dev/kroft/pkg/utils/timer"
)

var errRootTest = errors.New("boom")

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

func TestNewRootCmdVersionFormatting(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("1.2.3", "abc123", "2025-08-17")

	assert.Equal(t, "1.2.3 (Built on 2025-08-17 from Git SHA abc123)", root.Version)
}

func TestExecuteShowsHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetArgs([]string{})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteShowsHelpFlag(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteShowsVersion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("1.2.3", "abc123", "2025-08-17")
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	_ = root.Execute()

	snaps.MatchSnapshot(t, out.String())
}

func TestNewRootCmdTimingFlagDefaultFalse(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")

	flag := root.PersistentFlags().Lookup(helpers.TimingFlagName)
	require.NotNil(t, flag, "timing flag should be registered on the root command")

	enabled, err := root.PersistentFlags().GetBool(helpers.TimingFlagName)
	require.NoError(t, err)
	assert.False(t, enabled, "timing must be opt-in")
}

func TestDefaultRunDoesNotPrintTimingOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := setupRootWithBuffer(&out)

	probe := &cobra.Command{
		Use:  "timing-probe",
		RunE: timingProbeRunE(notify.SuccessType, "probe complete"),
	}

	root.AddCommand(probe)
	root.SetArgs([]string{"timing-probe"})

	_ = root.Execute()

	assert.NotContains(t, out.String(), "⏲", "no timing glyph without --timing")
}

func TestTimingFlagEnablesTimingOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := setupRootWithBuffer(&out)

	probe := &cobra.Command{
		Use:          "timing-probe",
		SilenceUsage: true,
		RunE:         timingProbeRunE(notify.SuccessType, "probe complete"),
	}

	root.AddCommand(probe)
	root.SetArgs([]string{"--timing", "timing-probe"})

	_ = root.Execute()

	assert.Contains(t, out.String(), "⏲ current:")
	assert.Contains(t, out.String(), "total:")
}

func TestTimingDoesNotPrintOnError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := setupRootWithBuffer(&out)

	failing := &cobra.Command{
		Use:          "timing-fail",
		SilenceUsage: true,
		RunE:         timingProbeRunE(notify.ErrorType, "boom"),
	}

	root.AddCommand(failing)
	root.SetArgs([]string{"--timing", "timing-fail"})

	_ = root.Execute()

	assert.NotContains(t, out.String(), "⏲", "errors should not carry timing output")
}

func TestExecuteReturnsError(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(_ *cobra.Command, _ []string) error {
			return errRootTest
		},
	})
	root.SetArgs([]string{"fail"})

	err := root.Execute()
	require.ErrorIs(t, err, errRootTest)
}

func TestExecuteWithNonexistentCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"nonexistent"})

	require.Error(t, root.Execute())

	snaps.MatchSnapshot(t, out.String())
}

func TestExecuteSuccess(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")
	root.AddCommand(&cobra.Command{
		Use: "ok",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	})
	root.SetArgs([]string{"ok"})

	require.NoError(t, root.Execute())
}

func TestExecuteWrapperSuccess(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")
	root.AddCommand(&cobra.Command{
		Use: "ok",
		RunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
	})
	root.SetArgs([]string{"ok"})

	require.NoError(t, cmd.Execute(root))
}

func TestExecuteWrapperError(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("test", "test", "test")
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(_ *cobra.Command, _ []string) error {
			return errRootTest
		},
	})
	root.SetArgs([]string{"fail"})

	err := cmd.Execute(root)
	require.ErrorIs(t, err, errRootTest)
}

// setupRootWithBuffer creates a root command writing all output to buf.
func setupRootWithBuffer(buf *bytes.Buffer) *cobra.Command {
	root := cmd.NewRootCmd("test", "test", "test")
	root.SetOut(buf)
	root.SetErr(buf)

	return root
}

// timingProbeRunE returns a RunE that writes one timed message. When msgType
// is notify.ErrorType it also fails with errRootTest, letting tests check
// that timing output is suppressed on errors.
func timingProbeRunE(
	msgType notify.MessageType,
	content string,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		tmr := timer.New()
		tmr.Start()

		notify.WriteMessage(notify.Message{
			Type:    msgType,
			Content: content,
			Timer:   helpers.MaybeTimer(cmd, tmr),
			Writer:  cmd.OutOrStdout(),
		})

		if msgType == notify.ErrorType {
			return errRootTest
		}

		return nil
	}
}
