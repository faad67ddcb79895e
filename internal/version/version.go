// Package version carries build metadata stamped in with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// These variables are set at build time via -ldflags
var (
	Version   = "dev"     // Set via: -ldflags "-X github.com/yantrahq/yantra/internal/version.Version=v1.0.0"
	BuildTime = "unknown" // Set via: -ldflags "-X github.com/yantrahq/yantra/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
	GitCommit = "unknown" // Set via: -ldflags "-X github.com/yantrahq/yantra/internal/version.GitCommit=$(git rev-parse HEAD)"
)

// BuildInfo contains comprehensive build information
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
	GitCommit string `json:"gitCommit"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetBuildInfo returns complete build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns a formatted version info string for CLI output
func Info() string {
	if BuildTime == "unknown" {
		return fmt.Sprintf("%s (development build)", Version)
	}

	built, err := time.Parse(time.RFC3339, BuildTime)
	if err != nil {
		return fmt.Sprintf("%s (built %s)", Version, BuildTime)
	}

	commit := GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("%s (built %s, commit %s)", Version, built.UTC().Format("2006-01-02 15:04:05 UTC"), commit)
}

// CompareVersions compares two semantic version strings.
// Returns -1 if v1 < v2, 0 if equal, 1 if v1 > v2. Development builds sort
// first and a pre-release sorts before its release.
func CompareVersions(v1, v2 string) int {
	v1 = strings.TrimPrefix(v1, "v")
	v2 = strings.TrimPrefix(v2, "v")

	if v1 == v2 {
		return 0
	}
	if isDevelopment(v1) {
		return -1
	}
	if isDevelopment(v2) {
		return 1
	}

	core1, pre1, _ := strings.Cut(v1, "-")
	core2, pre2, _ := strings.Cut(v2, "-")

	parts1 := strings.Split(core1, ".")
	parts2 := strings.Split(core2, ".")
	for i := 0; i < len(parts1) || i < len(parts2); i++ {
		n1, n2 := numericPart(parts1, i), numericPart(parts2, i)
		if n1 != n2 {
			if n1 < n2 {
				return -1
			}
			return 1
		}
	}

	switch {
	case pre1 == pre2:
		return 0
	case pre1 == "":
		return 1
	case pre2 == "":
		return -1
	case pre1 < pre2:
		return -1
	default:
		return 1
	}
}

// IsUpdateAvailable reports whether serverVersion is newer than clientVersion
func IsUpdateAvailable(clientVersion, serverVersion string) bool {
	return CompareVersions(clientVersion, serverVersion) < 0
}

func isDevelopment(v string) bool {
	return v == "dev" || v == "unknown" || v == ""
}

// numericPart returns the leading number of parts[i], or 0
func numericPart(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	p := parts[i]
	end := 0
	for end < len(p) && p[end] >= '0' && p[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(p[:end])
	if err != nil {
		return 0
	}
	return n
}
