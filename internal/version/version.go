// Package version reports build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/agentdesk/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/agentdesk/internal/version.Commit=abc123
//	  -X github.com/soyeahso/agentdesk/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Current returns the build metadata. When no commit was linked in, the
// VCS revision recorded by the go tool is used instead.
func Current() Build {
	b := Build{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if b.Commit != "unknown" {
		return b
	}
	if info, ok := readBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				b.Commit = s.Value
			}
		}
	}
	return b
}

// String renders b on one line with the commit shortened.
func (b Build) String() string {
	return fmt.Sprintf("agentdesk %s (commit: %s, built: %s, %s)", b.Version, short(b.Commit), b.Date, b.Platform)
}

// Info is Current().String().
func Info() string {
	return Current().String()
}

// Name identifies this build to peers, e.g. as a NATS connection name.
func Name() string {
	return "agentdesk/" + Version
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
