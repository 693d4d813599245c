// Package cli provides the pieces kroft commands are assembled from.
//
//   - cli/cmd: command definitions for every kroft operation
//   - cli/helpers: flag handling, including the timing flag plumbing
//   - cli/lifecycle: the shared load-resolve-execute flow behind dev cluster commands
//   - cli/ui: terminal output (asciiart, confirm prompts, error handling)
package cli
