// Package version reports the harpia-deck build.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/harpiadesk/harpia/internal/version.Version=v0.3.0 \
//	                   -X github.com/harpiadesk/harpia/internal/version.Commit=abc1234"
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			Version, Commit = fromSettings(Version, Commit, info.Settings)
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromSettings fills whichever of version and commit is empty from the VCS
// stamps Go embeds in the binary.
func fromSettings(version, commit string, settings []debug.BuildSetting) (string, string) {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if commit == "" {
		if rev := vcs["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if vcs["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			commit = rev
		}
	}
	if version == "" {
		if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			version = "dev-" + t.Format("20060102")
		}
	}
	return version, commit
}

// Full returns the version with its commit.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent is sent on every HTTP request to the server.
func UserAgent() string {
	return "harpia-deck/" + Version
}
