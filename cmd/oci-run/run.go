package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"pkt.systems/ocirun/internal/appconfig"
	"pkt.systems/ocirun/internal/engine"
	"pkt.systems/ocirun/internal/entrypoint"
	"pkt.systems/ocirun/internal/launch"
	"pkt.systems/pslog"
)

func runContainer(cmd *cobra.Command, s settings, command []string, dryRun bool) error {
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)

	cfg, err := appconfig.Load(ctx, s.ConfigFile)
	if err != nil {
		return err
	}
	if len(command) > 0 {
		cfg.Command = command
	}
	if s.Profile != "" {
		cfg.Profile = s.Profile
	}
	if s.Engine != "" {
		cfg.Engine = s.Engine
	}
	logger.Debug("config", "engine", cfg.Engine, "profile", cfg.Profile, "command", cfg.Command, "profiles", cfg.Profiles.Paths())

	target := cfg.Profile
	if target == "" {
		target, err = currentDir()
		if err != nil {
			return err
		}
	}
	profile, err := cfg.Profiles.Lookup(target)
	if err != nil {
		return err
	}
	logger.Info("profile selected", "path", target, "image", profile.Image)

	bin, err := engine.Resolve(cfg.Engine)
	if err != nil {
		return err
	}

	host := launch.Host{
		TTY: term.IsTerminal(int(os.Stdin.Fd())),
		UID: uint32(unix.Geteuid()),
		GID: uint32(unix.Getegid()),
	}
	if profile.Entrypoint {
		dir, err := entrypoint.CacheDir()
		if err != nil {
			return err
		}
		path, err := entrypoint.Install(ctx, dir)
		if err != nil {
			return err
		}
		host.Entrypoint = path
	}

	argv, err := launch.Args(bin, profile, cfg.Command, host)
	if err != nil {
		return err
	}
	logger.Debug("command", "argv", argv)

	if dryRun {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), shellQuote(argv))
		return err
	}
	return engine.Exec(ctx, argv)
}

func currentDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(wd)
}

func shellQuote(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = quoteShellArg(p)
	}
	return strings.Join(quoted, " ")
}

func quoteShellArg(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool { return !isSafeShellRune(r) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=@%+,", r)
}
