package appconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pkt.systems/ocirun/internal/expand"
	"pkt.systems/pslog"
)

// Load reads the config file at path. If path is empty, DefaultConfigPath is
// used. A missing file is not an error: the default config is returned and
// warnings are logged.
func Load(ctx context.Context, path string) (Config, error) {
	log := pslog.Ctx(ctx)
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			log.Warn("using default config, can't locate the config file", "err", err)
			log.Warn("do you need to define the HOME environment variable?")
			log.Warn("use --config-file=PATH to manually specify the path to the config file")
			return DefaultConfig(), nil
		}
		path = defaultPath
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		log.Warn("using default config, file not found", "path", path)
		log.Warn("create a config file to suppress this warning")
		log.Warn("do you need --config-file=PATH to read from a different file?")
		return DefaultConfig(), nil
	}

	log.Info("loading config file", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(ctx, data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data, expands profile paths and env values, and
// canonicalizes the profile registry.
func Parse(ctx context.Context, data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if cfg.Engine == "" {
		cfg.Engine = DefaultEngine
	}
	profile, err := expand.Expand(cfg.Profile)
	if err != nil {
		return Config{}, fmt.Errorf("profile: %w", err)
	}
	cfg.Profile = profile
	profiles, err := cfg.Profiles.canonicalize(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg.Profiles = profiles
	pslog.Ctx(ctx).Debug("config loaded", "profiles", len(cfg.Profiles), "engine", cfg.Engine)
	return cfg, nil
}

// WriteDefault writes a starter config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(starterConfig())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func starterConfig() Config {
	cfg := DefaultConfig()
	profile := DefaultProfile()
	profile.Image = "docker.io/library/debian:stable"
	profile.Volumes = []string{"$HOME/src:$HOME/src"}
	cfg.Profiles["$HOME/src"] = profile
	return cfg
}
