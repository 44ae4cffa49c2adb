package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCollectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Print the plugin inventory without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLocal(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer l.close()

			payload := l.collector(cliLogger(cmd.ErrOrStderr())).Collect()
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return printJSON(out, payload)
			}

			fmt.Fprintf(out, "%s (platform %s), %d plugins\n", payload.SiteURL, payload.PlatformVersion, len(payload.Plugins))
			for _, p := range payload.Plugins {
				update := ""
				if p.AvailableUpdate != nil {
					update = " -> " + *p.AvailableUpdate
				}
				auto := ""
				if p.AutoUpdate {
					auto = " [auto-update]"
				}
				fmt.Fprintf(out, "  %-30s %-10s %-8s%s%s\n", p.Slug, p.Version, p.Status, update, auto)
			}
			return nil
		},
	}
}
