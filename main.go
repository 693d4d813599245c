// Package main is the entry point for the kroft CLI.
package main

import (
	"os"
	"runtime/debug"

	"github.com/kroft-dev/kroft/internal/buildmeta"
	"github.com/kroft-dev/kroft/pkg/cli/cmd"
	"github.com/kroft-dev/kroft/pkg/utils/notify"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the root command and converts failures into an exit code. A
// recovered panic is reported like any other fatal error so a crash mid
// provisioning still prints something actionable.
//
//nolint:nonamedreturns // named return carries the exit code out of recover
func run(args []string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			notify.Errorf(os.Stderr, "panic recovered: %v\n%s", r, debug.Stack())

			exitCode = 1
		}
	}()

	rootCmd := cmd.NewRootCmd(buildmeta.Version, buildmeta.Commit, buildmeta.Date)
	rootCmd.SetArgs(args)

	err := cmd.Execute(rootCmd)
	if err != nil {
		notify.Errorf(rootCmd.ErrOrStderr(), "%v", err)

		return 1
	}

	return 0
}
