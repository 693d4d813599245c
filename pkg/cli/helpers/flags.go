package helpers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kroft-dev/kroft/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// TimingFlagName is the persistent flag that toggles per-activity timing
// output on success messages.
const TimingFlagName = "timing"

// ErrNilCommand indicates a nil command was passed where one is required.
var ErrNilCommand = errors.New("command is nil")

// IsTimingEnabled reports whether the timing flag is set on the command.
// The flag is looked up on the command itself, its persistent flags, and
// the persistent flags of its parents.
func IsTimingEnabled(cmd *cobra.Command) (bool, error) {
	if cmd == nil {
		return false, ErrNilCommand
	}

	flag := cmd.Flag(TimingFlagName)
	if flag == nil {
		return false, fmt.Errorf("flag %q not found on command", TimingFlagName)
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false, fmt.Errorf("parse %q flag: %w", TimingFlagName, err)
	}

	return enabled, nil
}

// MaybeTimer returns tmr when timing output is enabled on cmd, nil otherwise.
// Callers pass the result straight into notify messages, where a nil timer
// suppresses the timing block.
func MaybeTimer(cmd *cobra.Command, tmr timer.Timer) timer.Timer {
	if tmr == nil {
		return nil
	}

	enabled, err := IsTimingEnabled(cmd)
	if err != nil || !enabled {
		return nil
	}

	return tmr
}
