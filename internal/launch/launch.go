// Package launch turns a profile into an engine "container run" argument list.
package launch

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pkt.systems/ocirun/internal/appconfig"
	"pkt.systems/ocirun/internal/expand"
)

// EntrypointTarget is where the entrypoint script is mounted inside the container.
const EntrypointTarget = "/usr/local/bin/oci-entrypoint"

// Host is the ambient process state that feeds into the argument list.
type Host struct {
	// TTY reports whether stdin is a terminal.
	TTY bool
	// UID and GID are the effective ids, used unless the profile overrides them.
	UID uint32
	GID uint32
	// Entrypoint is the host path of the installed entrypoint script. It must be
	// set when the profile enables the custom entrypoint.
	Entrypoint string
}

// Args builds the full argv, starting with the engine binary, for running
// command inside the profile's container.
func Args(engine string, profile appconfig.Profile, command []string, host Host) ([]string, error) {
	if strings.TrimSpace(engine) == "" {
		return nil, errors.New("engine is required")
	}
	if profile.Entrypoint && host.Entrypoint == "" {
		return nil, errors.New("entrypoint script path is required")
	}

	args := []string{engine, "container", "run", "--init", "--interactive", "--rm"}
	if host.TTY {
		args = append(args, "--tty")
	}

	disable := ""
	if !profile.Setpriv {
		disable = "1"
	}
	args = append(args, envFlag("DISABLE_SETPRIV", disable))

	if profile.User != nil {
		args = append(args, envFlag("USER_NAME", *profile.User))
	}
	gid := host.GID
	if profile.UserGID != nil {
		gid = *profile.UserGID
	}
	args = append(args, envFlag("USER_GID", strconv.FormatUint(uint64(gid), 10)))
	uid := host.UID
	if profile.UserUID != nil {
		uid = *profile.UserUID
	}
	args = append(args, envFlag("USER_UID", strconv.FormatUint(uint64(uid), 10)))

	if len(profile.PathAppend) > 0 {
		args = append(args, envFlag("USER_PATH_POST", strings.Join(profile.PathAppend, ":")))
	}
	if len(profile.PathPrepend) > 0 {
		args = append(args, envFlag("USER_PATH_PRE", strings.Join(profile.PathPrepend, ":")))
	}

	for _, name := range sortedKeys(profile.Env) {
		if value := profile.Env[name]; value != nil {
			args = append(args, envFlag(name, *value))
		} else {
			args = append(args, "--env="+name)
		}
	}

	if profile.Workdir != nil {
		args = append(args, "--workdir="+*profile.Workdir)
	}

	for _, volume := range profile.Volumes {
		expanded, err := expand.Expand(volume)
		if err != nil {
			return nil, fmt.Errorf("volume %q: %w", volume, err)
		}
		args = append(args, "--volume="+expanded)
	}

	if profile.Entrypoint {
		args = append(args,
			fmt.Sprintf("--volume=%s:%s:ro", host.Entrypoint, EntrypointTarget),
			"--entrypoint="+EntrypointTarget,
		)
	}

	args = append(args, "--", profile.Image)
	args = append(args, command...)
	return args, nil
}

func envFlag(name, value string) string {
	return "--env=" + name + "=" + value
}

func sortedKeys(env map[string]*string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
