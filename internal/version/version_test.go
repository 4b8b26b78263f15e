package version

import (
	"strings"
	"testing"
)

func stamp(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, Commit, BuildTime = version, commit, buildTime
}

func TestResolveStamped(t *testing.T) {
	stamp(t, "v1.4.0", "0123456789abcdef", "20260830T120000Z")
	info := Resolve()
	if info.Version != "v1.4.0" || info.Commit != "0123456789abcdef" || info.BuildTime != "20260830T120000Z" {
		t.Fatalf("stamped fields not passed through: %+v", info)
	}
}

func TestResolveUnstampedUsesBuildTime(t *testing.T) {
	stamp(t, "", "", "20260830T120000Z")
	info := Resolve()
	if info.Version != "dev-20260830T120000Z" {
		t.Fatalf("version: got %q, want dev-<build time>", info.Version)
	}
}

func TestResolveFullyUnstamped(t *testing.T) {
	stamp(t, "", "", "")
	info := Resolve()
	if !strings.HasPrefix(info.Version, "dev-") || len(info.Version) != len("dev-20060102T150405Z") {
		t.Fatalf("version: got %q, want dev-<utc timestamp>", info.Version)
	}
}

func TestStringShortensCommit(t *testing.T) {
	stamp(t, "v2.0.1", "0123456789abcdef0123456789abcdef01234567", "")
	if got, want := String(), "v2.0.1 (01234567)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	stamp(t, "v2.0.1", "abc123", "")
	if got, want := String(), "v2.0.1 (abc123)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	stamp(t, "v2.0.1", "", "")
	if got := String(); got != "v2.0.1" {
		t.Fatalf("String() without a commit = %q, want bare version", got)
	}
}
