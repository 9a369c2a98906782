package entrypoint

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstallWritesExecutableScript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache", "oci-run")
	path, err := Install(context.Background(), dir)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected path %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %v", info.Mode().Perm())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, Script()) {
		t.Fatalf("installed script does not match embedded script")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the script in %s, got %d entries", dir, len(entries))
	}
}

func TestInstallRepairsStaleScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := Install(context.Background(), dir); err != nil {
		t.Fatalf("install: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, Script()) {
		t.Fatalf("expected stale script to be replaced")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755, got %v", info.Mode().Perm())
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := Install(context.Background(), dir)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	second, err := Install(context.Background(), dir)
	if err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if first != second {
		t.Fatalf("expected same path, got %q and %q", first, second)
	}
}

func TestInstallRequiresDir(t *testing.T) {
	if _, err := Install(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/cache")
	t.Setenv("HOME", "/home/alice")
	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("cache dir: %v", err)
	}
	if filepath.Base(dir) != "oci-run" {
		t.Fatalf("unexpected cache dir %q", dir)
	}
}

func TestScriptHonoursProfileEnv(t *testing.T) {
	s := string(Script())
	if !strings.HasPrefix(s, "#!/bin/sh\n") {
		t.Fatalf("expected POSIX shebang")
	}
	for _, name := range []string{"DISABLE_SETPRIV", "USER_NAME", "USER_UID", "USER_GID", "USER_PATH_PRE", "USER_PATH_POST", "setpriv"} {
		if !strings.Contains(s, name) {
			t.Fatalf("expected script to reference %s", name)
		}
	}
}
