// Package version exposes build information injected via -ldflags:
//
//	go build -ldflags "-X github.com/HerbHall/brandkit/internal/version.Version=v0.3.0 \
//	  -X github.com/HerbHall/brandkit/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Info returns a one-line human readable description of the build.
func Info() string {
	return fmt.Sprintf("brandkit %s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}

// Map returns the build information as a map for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}
