package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
)

func newSecretCommand(opts *RootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a new shared secret",
		Long: `Generate a random shared secret and print it.

With --save the secret is written to the settings store and to the
reporterctl config, so both the collector-facing endpoint and this CLI
use it. Share it with the remote collector.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := auth.GenerateSecret()
			if err != nil {
				return fmt.Errorf("generating secret: %w", err)
			}
			if save {
				if err := saveSecret(cmd, opts, secret); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the secret in settings and the reporterctl config")
	return cmd
}

func saveSecret(cmd *cobra.Command, opts *RootOptions, secret string) error {
	l, err := openLocal(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer l.close()

	settings, err := l.store.Settings(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	settings.Secret = secret
	if err := l.store.SaveSettings(cmd.Context(), settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	ctl, path, err := ctlConfig(opts)
	if err != nil {
		return err
	}
	ctl.Key = secret
	if err := config.SaveCtlConfig(path, ctl); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "secret saved to settings and %s\n", path)
	return nil
}
