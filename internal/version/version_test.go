package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pin sets the link-time variables for one test.
func pin(t *testing.T, v, commit, date string) {
	t.Helper()
	ov, oc, od := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = ov, oc, od })
	Version, Commit, Date = v, commit, date
}

func stubBuildInfo(t *testing.T, settings ...debug.BuildSetting) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func TestCurrent_LinkedValues(t *testing.T) {
	pin(t, "1.2.3", "abc1234567890", "2026-01-15")
	stubBuildInfo(t, debug.BuildSetting{Key: "vcs.revision", Value: "ffffffffff"})

	b := Current()
	assert.Equal(t, "1.2.3", b.Version)
	assert.Equal(t, "abc1234567890", b.Commit)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, b.Platform)
	assert.Equal(t, runtime.Version(), b.GoVersion)
}

func TestCurrent_FallsBackToVCSRevision(t *testing.T) {
	pin(t, "dev", "unknown", "unknown")
	stubBuildInfo(t,
		debug.BuildSetting{Key: "vcs", Value: "git"},
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"},
	)
	assert.Equal(t, "0123456789abcdef", Current().Commit)
}

func TestCurrent_NoBuildInfo(t *testing.T) {
	pin(t, "dev", "unknown", "unknown")
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }

	assert.Equal(t, "unknown", Current().Commit)
}

func TestInfo(t *testing.T) {
	pin(t, "0.4.0", "abc1234567890", "2026-03-01")

	assert.Equal(t,
		"agentdesk 0.4.0 (commit: abc1234, built: 2026-03-01, "+runtime.GOOS+"/"+runtime.GOARCH+")",
		Info())
	assert.Equal(t, "agentdesk/0.4.0", Name())
}

func TestShort(t *testing.T) {
	for in, want := range map[string]string{
		"abcdefghij": "abcdefg",
		"1234567":    "1234567",
		"abc":        "abc",
		"":           "",
	} {
		assert.Equal(t, want, short(in), "short(%q)", in)
	}
}
