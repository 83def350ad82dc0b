// FILE: relog/src/internal/version/version.go

// Package version carries relogd's build identity, injected at link
// time.
package version

import "fmt"

// Overridden via -ldflags on release builds.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the full build identity for display.
func String() string {
	if Version == "dev" {
		return fmt.Sprintf("dev (commit: %s, built: %s)", GitCommit, BuildTime)
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}

// Short returns the bare version tag.
func Short() string {
	return Version
}
