// Package version reports the oci-run build version.
package version

import (
	"runtime/debug"
	"strings"
)

// Unknown is reported when the binary carries no version information.
const Unknown = "unknown"

const modulePath = "pkt.systems/ocirun"

// buildVersion is set by release builds:
//
//	go build -ldflags "-X pkt.systems/ocirun/internal/version.buildVersion=v1.0.0" ./cmd/oci-run
var buildVersion = ""

// Current returns the release version stamped at link time, the module version
// when installed with go install, or a devel tag naming the VCS revision.
func Current() string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Unknown
	}
	return fromBuildInfo(info)
}

// Module returns the module path of the running binary.
func Module() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		return info.Main.Path
	}
	return modulePath
}

func fromBuildInfo(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	rev := settings["vcs.revision"]
	if rev == "" {
		return Unknown
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	v := "devel-" + rev
	if settings["vcs.modified"] == "true" {
		v += "-dirty"
	}
	return v
}
