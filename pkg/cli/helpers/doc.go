// Package helpers provides common CLI utilities for command handling.
//
// Key functionality:
//   - Timing flag detection (IsTimingEnabled)
//   - Conditional timer propagation into notify messages (MaybeTimer)
package helpers
