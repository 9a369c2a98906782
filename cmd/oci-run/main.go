package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pkt.systems/ocirun/internal/logx"
	"pkt.systems/ocirun/internal/version"
	"pkt.systems/psi"
)

const envPrefix = "OCI_RUN"

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "oci-run: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	verbose int
	quiet   int
	debug   bool
	dryRun  bool
}

func newRootCmd() *cobra.Command {
	v := newSettings()
	var opts rootOptions
	root := &cobra.Command{
		Use:   "oci-run [flags] [-- COMMAND [ARG...]]",
		Short: "Run a command in an OCI container chosen by the current directory",
		Long: `oci-run looks up the profile registered for the current directory (or --profile)
in the config file and runs COMMAND in that profile's container image through the
container engine. The engine replaces the oci-run process.`,
		Version:       version.Current(),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := logx.Setup(cmd.Context(), cmd.ErrOrStderr(), logx.Verbosity(opts.verbose, opts.quiet), opts.debug)
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := trailingCommand(cmd, args)
			if err != nil {
				return err
			}
			return runContainer(cmd, loadSettings(v), command, opts.dryRun)
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config-file", "c", "", "path to the config file")
	pf.BoolVarP(&opts.debug, "debug", "d", false, "enable additional debug logging from libraries")
	pf.CountVarP(&opts.quiet, "quiet", "q", "decrease logging verbosity (repeatable)")
	pf.CountVarP(&opts.verbose, "verbose", "v", "increase logging verbosity (repeatable)")

	f := root.Flags()
	f.StringP("profile", "p", "", "profile path (defaults to the current directory)")
	f.String("engine", "", "container engine binary (docker, podman, auto)")
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the engine command instead of running it")

	bindFlag(v, "config-file", pf)
	bindFlag(v, "profile", f)
	bindFlag(v, "engine", f)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newProfilesCmd(v))
	root.AddCommand(newConfigCmd(v))

	return root
}

// settings are the invocation-level values that may come from flags or
// OCI_RUN_* environment variables.
type settings struct {
	ConfigFile string
	Profile    string
	Engine     string
}

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlag binds the named flag to the same viper key. A missing flag is a
// programming error.
func bindFlag(v *viper.Viper, name string, flags *pflag.FlagSet) {
	if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		ConfigFile: strings.TrimSpace(v.GetString("config-file")),
		Profile:    strings.TrimSpace(v.GetString("profile")),
		Engine:     strings.TrimSpace(v.GetString("engine")),
	}
}

// trailingCommand returns the arguments given after "--". Anything before
// the separator is rejected so typos are not mistaken for the container command.
func trailingCommand(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash != 0 && len(args) > 0 {
		return nil, fmt.Errorf("unexpected argument %q (put the container command after --)", args[0])
	}
	if dash < 0 {
		return nil, nil
	}
	return args, nil
}
