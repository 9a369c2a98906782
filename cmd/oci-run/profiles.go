package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkt.systems/ocirun/internal/appconfig"
)

func newProfilesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured profiles",
		Long:  "List configured profiles by canonical path. The profile for the current directory is marked with '*'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cmd.Context(), loadSettings(v).ConfigFile)
			if err != nil {
				return err
			}
			wd, _ := currentDir()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, path := range cfg.Profiles.Paths() {
				mark := " "
				if path == wd {
					mark = "*"
				}
				if _, err := fmt.Fprintf(tw, "%s %s\t%s\n", mark, path, cfg.Profiles[path].Image); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}
