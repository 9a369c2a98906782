package appconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"pkt.systems/ocirun/internal/expand"
	"pkt.systems/pslog"
)

// Registry maps canonical directory paths to profiles.
type Registry map[string]Profile

// Lookup returns the profile registered for path. The path is canonicalized
// the same way registry keys are, without variable expansion.
func (r Registry) Lookup(path string) (Profile, error) {
	key, _ := CanonicalPath(path)
	profile, ok := r[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNoProfile, key)
	}
	return profile, nil
}

// Paths returns the registered paths in sorted order.
func (r Registry) Paths() []string {
	paths := make([]string, 0, len(r))
	for path := range r {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// CanonicalPath resolves path to an absolute path without symlinks and
// reports whether that succeeded. When the path cannot be resolved (for
// example because it does not exist) path is returned unchanged.
func CanonicalPath(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, false
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return path, false
	}
	return resolved, true
}

// canonicalize rebuilds the registry with expanded, canonical keys and
// expanded env values. Keys are visited in sorted order, so when several
// config keys resolve to the same directory the lexically last one wins.
func (r Registry) canonicalize(ctx context.Context) (Registry, error) {
	log := pslog.Ctx(ctx)
	out := make(Registry, len(r))
	for _, path := range r.Paths() {
		profile := r[path]
		env, err := expandEnvValues(profile.Env)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
		profile.Env = env

		expanded, err := expand.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", path, err)
		}
		key, canonical := CanonicalPath(expanded)
		if !canonical {
			log.Info("non-canonical profile", "path", key)
		}
		if err := profile.Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", key, err)
		}
		if _, dup := out[key]; dup {
			log.Warn("duplicate profile path", "path", key, "config_key", path)
		}
		out[key] = profile
	}
	return out, nil
}

func expandEnvValues(env map[string]*string) (map[string]*string, error) {
	if len(env) == 0 {
		return env, nil
	}
	out := make(map[string]*string, len(env))
	for name, value := range env {
		if value == nil {
			out[name] = nil
			continue
		}
		expanded, err := expand.Expand(*value)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", name, err)
		}
		out[name] = &expanded
	}
	return out, nil
}
