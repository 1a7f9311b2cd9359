// Package version reports the excss build version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X bennypowers.dev/excss/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// GetVersion returns the ldflags version, else the module version from the
// build info, else "dev"
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// GetFullVersion adds the short commit, when known
func GetFullVersion() string {
	v := GetVersion()
	if GitCommit == "unknown" || GitCommit == "" {
		return v
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, BuildTime)
}
