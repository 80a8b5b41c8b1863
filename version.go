package oggseek

import (
	"fmt"
	"runtime"
)

// Version is the semantic version of the oggseek library.
const Version = "0.1.0"

// VersionInfo describes the build of the library.
type VersionInfo struct {
	Version   string
	GitCommit string // set via -ldflags
	BuildTime string // set via -ldflags
	GoVersion string
}

// String formats v on one line, as printed by the tools.
func (v VersionInfo) String() string {
	return fmt.Sprintf("oggseek %s (commit %s, built %s, %s)", v.Version, v.GitCommit, v.BuildTime, v.GoVersion)
}

// GetVersionInfo returns the build information.
//
// GitCommit and BuildTime read "unknown" unless set at build time:
//
//	go build -ldflags="-X github.com/simonhull/oggseek.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/oggseek.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/ogg-dump-tool
func GetVersionInfo() VersionInfo {
	goVer := goVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: goVer,
	}
}

var (
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)
