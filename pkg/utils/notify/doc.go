// Package notify renders user-facing CLI output with consistent symbols and
// colors.
//
// [WriteMessage] and the convenience helpers print single status lines:
// success (✔), error (✗), warning (⚠), info (ℹ), activity (►), generate (✚),
// and bold emoji-prefixed titles.
//
// [ProgressGroup] runs tasks in parallel with a live status line per task,
// falling back to plain state-transition output on non-TTY writers.
//
// [StageSeparatingWriter] wraps an io.Writer and inserts a blank line before
// each title so command stages read as separate blocks.
package notify
