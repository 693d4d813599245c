// Package buildmeta carries the version identity stamped into release
// binaries.
//
// Release builds override the defaults through ldflags:
//
//	go build -ldflags="-X github.com/kroft-dev/kroft/internal/buildmeta.Version=v1.2.0 ..."
//
// A plain source build reports itself as a dev binary.
//
//nolint:gochecknoglobals
package buildmeta

var (
	// Version is the release tag, or "dev" for source builds.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the UTC build timestamp.
	Date = "unknown"
)
