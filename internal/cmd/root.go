// Package cmd implements the reporterctl commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flo-mic/pluginreporter/internal/version"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string // reporterd server.yaml
	CtlPath    string // reporterctl ctl.yaml; empty means the default location
	Format     string // "text" | "json"
}

var validFormats = []string{"text", "json"}

// NewRootCommand builds the reporterctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "reporterctl",
		Short:   "Operate the plugin inventory reporter",
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "/etc/pluginreporter/server.yaml", "path to the reporterd server config")
	cmd.PersistentFlags().StringVar(&opts.CtlPath, "ctl-config", "", "path to the reporterctl config (default ~/.config/pluginreporter/ctl.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSendCommand(opts))
	cmd.AddCommand(newCollectCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newSecretCommand(opts))
	cmd.AddCommand(newInstallCommand(opts))

	return cmd
}
