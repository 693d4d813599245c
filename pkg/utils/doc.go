// Package utils collects the small shared helpers the rest of kroft leans
// on: environment variable expansion for config values, label map handling,
// user facing notifications, embedded command execution, and stage timing.
package utils
