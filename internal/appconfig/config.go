package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user config and cache directories.
const AppName = "oci-run"

// DefaultEngine is the container engine used when none is configured.
const DefaultEngine = "docker"

// ErrNoProfile is returned when no profile is registered for a path.
var ErrNoProfile = errors.New("no profile")

// Config is the top-level oci-run configuration.
type Config struct {
	// Command to run inside the container.
	Command []string `yaml:"command,omitempty"`
	// Profile selects a profile path instead of the working directory.
	Profile string `yaml:"profile,omitempty"`
	// Engine is the container engine binary (docker, podman, auto, ...).
	Engine string `yaml:"engine,omitempty"`
	// Profiles are the directory-specific container profiles.
	Profiles Registry `yaml:"profiles"`
}

// Profile holds the container settings for one directory.
type Profile struct {
	Entrypoint  bool               `yaml:"entrypoint"`
	Env         map[string]*string `yaml:"env,omitempty"`
	Image       string             `yaml:"image"`
	PathAppend  []string           `yaml:"path-append,omitempty"`
	PathPrepend []string           `yaml:"path-prepend,omitempty"`
	Setpriv     bool               `yaml:"setpriv"`
	User        *string            `yaml:"user,omitempty"`
	UserGID     *uint32            `yaml:"user-gid,omitempty"`
	UserUID     *uint32            `yaml:"user-uid,omitempty"`
	Volumes     []string           `yaml:"volumes,omitempty"`
	Workdir     *string            `yaml:"workdir,omitempty"`
}

// DefaultProfile returns a profile with the entrypoint and setpriv defaults applied.
func DefaultProfile() Profile {
	return Profile{
		Entrypoint: true,
		Setpriv:    true,
	}
}

// UnmarshalYAML decodes a profile, keeping the defaults for omitted booleans.
func (p *Profile) UnmarshalYAML(node *yaml.Node) error {
	type plain Profile
	out := plain(DefaultProfile())
	if err := node.Decode(&out); err != nil {
		return err
	}
	*p = Profile(out)
	return nil
}

// Validate checks the fields that must be present for a launch.
func (p Profile) Validate() error {
	image := strings.TrimSpace(p.Image)
	if image == "" {
		return errors.New("image is required")
	}
	if _, err := reference.ParseNormalizedNamed(image); err != nil {
		return fmt.Errorf("invalid image %q: %w", image, err)
	}
	return nil
}

// DefaultConfig returns an empty configuration.
func DefaultConfig() Config {
	return Config{
		Engine:   DefaultEngine,
		Profiles: Registry{},
	}
}

// DefaultConfigPath returns <user config dir>/oci-run/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}
