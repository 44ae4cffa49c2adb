package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/flo-mic/pluginreporter/internal/api"
)

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that reporterd is up and accepts the key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := remoteCall(cmd.Context(), opts, http.MethodGet, "/status")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status check failed: HTTP %d", resp.StatusCode)
			}

			var st api.StatusResponse
			if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
				return fmt.Errorf("decoding status: %w", err)
			}
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), st)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s active on %s (checked %s)\n", st.Name, st.Version, st.SiteURL, st.CheckedAt)
			return nil
		},
	}
}
