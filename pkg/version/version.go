// Package version provides version information for jenkins-utils.
// These variables are set via ldflags during the build process.
package version

import (
	"fmt"
	"runtime"
)

// Version is the current version of the binary.
// Set via -ldflags "-X github.com/informaticsmatters/jenkins-utils/pkg/version.Version=..."
var Version = "dev"

// BuildDate is the date when the binary was built.
var BuildDate = "unknown"

// GitCommit is the git commit hash used to build the binary.
var GitCommit = "unknown"

// String returns a formatted version string.
func String() string {
	return Version
}

// FullString returns a detailed version string including build info.
func FullString() string {
	if Version == "dev" {
		return "jenkins-utils development version"
	}
	return fmt.Sprintf("jenkins-utils %s (%s)", Version, GitCommit)
}

// Info returns all version information as a map.
func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"buildDate": BuildDate,
		"gitCommit": GitCommit,
		"goVersion": runtime.Version(),
	}
}
