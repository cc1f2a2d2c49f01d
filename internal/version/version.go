// Package version holds build identity, stamped via -ldflags at release
// time and reported by the -version flag and the health endpoint.
package version

import "fmt"

var (
	// Version is the semantic version, or "dev" for unstamped builds
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the build identity on one line.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
