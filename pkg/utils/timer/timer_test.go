package timer_test

import (
	"testing"
	"time"

	"github.com/kroft-dev/kroft/pkg/utils/timer"
	"github.com/stretchr/testify/assert"
)

func TestGetTiming(t *testing.T) {
	t.Parallel()

	t.Run("returns_zero_before_start", func(t *testing.T) {
		t.Parallel()

		tmr := timer.New()

		total, stage := tmr.GetTiming()

		assert.Equal(t, time.Duration(0), total)
		assert.Equal(t, time.Duration(0), stage)
	})

	t.Run("tracks_elapsed_time_after_start", func(t *testing.T) {
		t.Parallel()

		tmr := timer.New()
		tmr.Start()

		time.Sleep(10 * time.Millisecond)

		total, stage := tmr.GetTiming()

		assert.GreaterOrEqual(t, total, 5*time.Millisecond)
		assert.GreaterOrEqual(t, stage, 5*time.Millisecond)
	})

	t.Run("new_stage_resets_stage_but_not_total", func(t *testing.T) {
		t.Parallel()

		tmr := timer.New()
		tmr.Start()

		time.Sleep(20 * time.Millisecond)
		tmr.NewStage()

		total, stage := tmr.GetTiming()

		assert.GreaterOrEqual(t, total, 15*time.Millisecond)
		assert.Less(t, stage, total)
	})

	t.Run("new_stage_before_start_behaves_like_start", func(t *testing.T) {
		t.Parallel()

		tmr := timer.New()
		tmr.NewStage()

		total, stage := tmr.GetTiming()

		assert.GreaterOrEqual(t, total, time.Duration(0))
		assert.Equal(t, total, stage)
	})

	t.Run("start_resets_both_durations", func(t *testing.T) {
		t.Parallel()

		tmr := timer.New()
		tmr.Start()

		time.Sleep(20 * time.Millisecond)
		tmr.Start()

		total, _ := tmr.GetTiming()

		assert.Less(t, total, 20*time.Millisecond)
	})
}
