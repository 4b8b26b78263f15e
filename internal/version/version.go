// Package version carries build metadata stamped in at link time.
package version

import "time"

// Stamped at build time with
// -ldflags "-X .../internal/version.Version=v1.2.3 ...".  All three stay
// empty in a plain `go build`.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// Info is the resolved build identity.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Resolve returns the stamped build identity.  An unstamped binary gets a
// synthetic dev version: "dev-" plus the build timestamp when one was
// stamped, "dev-" plus the current UTC time otherwise.
func Resolve() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
	if info.Version == "" {
		stamp := info.BuildTime
		if stamp == "" {
			stamp = time.Now().UTC().Format("20060102T150405Z")
		}
		info.Version = "dev-" + stamp
	}
	return info
}

// String renders the identity as a single line, "<version> (<commit>)" when a
// commit was stamped.
func String() string {
	info := Resolve()
	if info.Commit == "" {
		return info.Version
	}
	return info.Version + " (" + shortCommit(info.Commit) + ")"
}

// shortCommit abbreviates a full hash to its leading 8 characters.
func shortCommit(commit string) string {
	if len(commit) <= 8 {
		return commit
	}
	return commit[:8]
}
