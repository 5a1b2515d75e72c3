// Package version holds the build-time identity the CLI's version
// subcommand reports. The three vars are meant to be set via
// -ldflags "-X .../pkg/version.Version=... -X .../pkg/version.Commit=...".
package version

import "fmt"

// Version, Commit, and BuildDate default to placeholders for a `go
// build` invocation that does not pass -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String renders the three fields as one human-readable line.
func String() string {
	return fmt.Sprintf("rectjoin %s (commit %s, built %s)", Version, Commit, BuildDate)
}
