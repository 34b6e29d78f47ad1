package bender

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information
const (
	Version    = "0.3.0"
	APIVersion = "v1"
)

// BuildInfo is stamped at link time through SetBuildInfo or -ldflags.
var BuildInfo = struct {
	Version    string
	APIVersion string
	GitCommit  string
	BuildDate  string
	GoVersion  string
}{
	Version:    Version,
	APIVersion: APIVersion,
	GoVersion:  runtime.Version(),
}

// SetBuildInfo is called by the build process
func SetBuildInfo(commit, date, goVersion string) {
	BuildInfo.GitCommit = commit
	BuildInfo.BuildDate = date
	if goVersion != "" {
		BuildInfo.GoVersion = goVersion
	}
}

// VersionInfo returns the one-line version banner.
func VersionInfo() string {
	return fmt.Sprintf("Bender %s (API %s)", BuildInfo.Version, BuildInfo.APIVersion)
}

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bender %s\n", BuildInfo.Version)
	fmt.Fprintf(&b, "API Version: %s\n", BuildInfo.APIVersion)
	fmt.Fprintf(&b, "Go Version: %s\n", BuildInfo.GoVersion)

	if BuildInfo.GitCommit != "" {
		fmt.Fprintf(&b, "Git Commit: %s\n", BuildInfo.GitCommit)
	}
	if BuildInfo.BuildDate != "" {
		fmt.Fprintf(&b, "Build Date: %s\n", BuildInfo.BuildDate)
	}

	return b.String()
}
