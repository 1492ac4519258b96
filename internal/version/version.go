// Package version exposes build metadata injected via ldflags.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X github.com/example/malkhana/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata reported by `malkhana version` and /healthz.
type Info struct {
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Current returns the build metadata with the commit shortened.
func Current() Info {
	return Info{Commit: shortCommit(Commit), BuildTime: BuildTime}
}

// String returns the human-readable version line.
func String() string {
	info := Current()
	return fmt.Sprintf("malkhana dev (commit: %s, built: %s)", info.Commit, info.BuildTime)
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
