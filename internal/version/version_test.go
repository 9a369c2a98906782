package version

import (
	"runtime/debug"
	"testing"
)

func TestCurrentPrefersBuildVersion(t *testing.T) {
	old := buildVersion
	buildVersion = "v1.2.3"
	t.Cleanup(func() { buildVersion = old })

	if got := Current(); got != "v1.2.3" {
		t.Fatalf("expected build version, got %q", got)
	}
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		info debug.BuildInfo
		want string
	}{
		{
			name: "module-version",
			info: debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}},
			want: "v0.4.0",
		},
		{
			name: "devel-revision",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "1234567890abcdef"},
					{Key: "vcs.modified", Value: "false"},
				},
			},
			want: "devel-1234567890ab",
		},
		{
			name: "dirty",
			info: debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: "devel-abc123-dirty",
		},
		{name: "nothing", info: debug.BuildInfo{}, want: Unknown},
	}
	for _, tc := range tests {
		if got := fromBuildInfo(&tc.info); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestModule(t *testing.T) {
	if got := Module(); got == "" {
		t.Fatalf("expected module path")
	}
}
