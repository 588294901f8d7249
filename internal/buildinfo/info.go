// Package buildinfo carries version details stamped in at link time:
//
//	go build -ldflags "-X github.com/spendsync/spendsync/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "fmt"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short git hash the binary was built from.
	Commit = "none"
	// Date is the build time.
	Date = "unknown"
)

// String renders the build details for --version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
