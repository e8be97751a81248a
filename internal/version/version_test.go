package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_LdflagsWin(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Version: "v9.9.9"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "deadbeefcafebabe0000"}},
		}, true
	}

	got := resolve("v1.2.3", "abc123", "2026-01-01", read)
	assert.Equal(t, Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-01"}, got)
}

func TestResolve_FallsBackToBuildInfo(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.4.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "deadbeefcafebabe0000"},
				{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
			},
		}, true
	}

	got := resolve("dev", "unknown", "unknown", read)
	assert.Equal(t, Info{Version: "v0.4.0", Commit: "deadbeefcafe", Date: "2026-03-04T05:06:07Z"}, got)
}

func TestResolve_DevelBuild(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}

	got := resolve("dev", "unknown", "unknown", read)
	assert.Equal(t, "dev (commit: unknown, built: unknown)", got.String())
}

func TestResolve_NoBuildInfo(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) { return nil, false }

	got := resolve("dev", "unknown", "unknown", read)
	assert.Equal(t, Info{Version: "dev", Commit: "unknown", Date: "unknown"}, got)
}
