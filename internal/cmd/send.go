package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/flo-mic/pluginreporter/internal/api"
	"github.com/flo-mic/pluginreporter/internal/report"
)

func newSendCommand(opts *RootOptions) *cobra.Command {
	var viaDaemon bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver the plugin inventory now",
		Long: `Collect the plugin inventory and POST it to the configured endpoint.

By default the cycle runs in this process against the host described by
--config. With --remote the running reporterd is asked to do it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if viaDaemon {
				return runRemoteSend(cmd, opts)
			}
			return runLocalSend(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&viaDaemon, "remote", false, "ask the running reporterd to send")
	return cmd
}

func runLocalSend(cmd *cobra.Command, opts *RootOptions) error {
	l, err := openLocal(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer l.close()

	logger := cliLogger(cmd.ErrOrStderr())
	res := report.New(l.store, l.collector(logger), report.WithLogger(logger)).
		Report(cmd.Context(), report.TriggerManual)

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := printJSON(out, res); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "%s: %s\n", res.Outcome, res.Message)
	}
	if !res.OK() {
		return fmt.Errorf("inventory not delivered (%s)", res.Outcome)
	}
	return nil
}

func runRemoteSend(cmd *cobra.Command, opts *RootOptions) error {
	resp, err := remoteCall(cmd.Context(), opts, http.MethodPost, "/send")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body api.SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding response (HTTP %d): %w", resp.StatusCode, err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := printJSON(out, body); err != nil {
			return err
		}
	} else if body.Status == "ok" {
		fmt.Fprintf(out, "delivered %d plugins at %s\n", body.PluginCount, body.SentAt)
	}
	if body.Status != "ok" {
		return fmt.Errorf("reporterd could not deliver %d plugins; see its log", body.PluginCount)
	}
	return nil
}
