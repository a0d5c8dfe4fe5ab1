package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release of the pose timer binaries, set with -ldflags "-X".
	Version = "0.3.0"
	// Commit is the short git SHA of the build, "none" for local builds.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the release only.
func Short() string {
	return Version
}

// Full returns the release with build metadata and the Go runtime.
func Full() string {
	return fmt.Sprintf("pose-timer %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies a pose timer binary to the server, e.g. "pose-timer/0.3.0".
func UserAgent(binary string) string {
	return binary + "/" + Version
}
