// Package entrypoint installs the privilege-dropping entrypoint script that
// oci-run mounts into containers.
package entrypoint

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pkt.systems/ocirun/internal/appconfig"
	"pkt.systems/pslog"
)

// FileName is the installed script name inside the cache directory.
const FileName = "oci-entrypoint"

//go:embed oci-entrypoint.sh
var script []byte

// Script returns the embedded entrypoint script.
func Script() []byte {
	return bytes.Clone(script)
}

// CacheDir returns the per-user cache directory for oci-run.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("can't locate cache dir (do you need to define the HOME environment variable?): %w", err)
	}
	return filepath.Join(dir, appconfig.AppName), nil
}

// Install writes the entrypoint script into dir with mode 0755 and returns its
// path. An up-to-date script is left untouched.
func Install(ctx context.Context, dir string) (string, error) {
	log := pslog.Ctx(ctx)
	if dir == "" {
		return "", errors.New("entrypoint dir is required")
	}
	path := filepath.Join(dir, FileName)
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, script) {
		if info, err := os.Stat(path); err == nil && info.Mode().Perm() == 0o755 {
			log.Debug("entrypoint up to date", "path", path)
			return path, nil
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("entrypoint dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+FileName+"-*")
	if err != nil {
		return "", fmt.Errorf("entrypoint temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := tmp.Write(script); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write entrypoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write entrypoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("write entrypoint: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod entrypoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return "", fmt.Errorf("install entrypoint: %w", err)
	}
	log.Debug("entrypoint installed", "path", path)
	return path, nil
}
