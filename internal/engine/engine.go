// Package engine resolves the container engine binary and hands the process
// over to it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"pkt.systems/pslog"
)

const (
	// Docker is the default engine.
	Docker = "docker"
	// Podman is the fallback engine for auto-detection.
	Podman = "podman"
	// Auto selects the first engine found on PATH.
	Auto = "auto"
)

// ErrNoRuntime is returned when no container engine is found.
var ErrNoRuntime = errors.New("no container runtime found (need docker or podman)")

// execve replaces the process image; swapped in tests.
var execve = unix.Exec

// Resolve maps a configured engine name to the binary to run.
func Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "":
		return Docker, nil
	case Auto:
		return Detect()
	default:
		return name, nil
	}
}

// Detect finds an available container engine, preferring docker over podman.
func Detect() (string, error) {
	for _, bin := range []string{Docker, Podman} {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		return bin, nil
	}
	return "", ErrNoRuntime
}

// Exec replaces the current process with argv, looked up on PATH. It only
// returns on failure.
func Exec(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("command is empty")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("command failed: %q: %w", argv, err)
	}
	pslog.Ctx(ctx).Debug("exec", "path", path, "argv", argv)
	if err := execve(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("command failed: %q: %w", argv, err)
	}
	return nil
}
