package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
)

// initAnswers are the values collected by the init wizard.
type initAnswers struct {
	EndpointURL         string
	NewSecret           bool
	AllowedDomains      string
	AdminEmails         string
	HideRestrictedMenus bool
	SaveCtl             bool
}

func newInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Configure the reporter settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLocal(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer l.close()

			current, err := l.store.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Welcome to reporterctl init. Let's set up inventory reporting.")
			fmt.Fprintln(out)

			answers, err := runInitWizard(current)
			if err != nil {
				return err
			}

			updated, err := applyAnswers(current, answers)
			if err != nil {
				return err
			}
			if err := l.store.SaveSettings(cmd.Context(), updated); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			fmt.Fprintln(out, "Settings saved.")

			if answers.SaveCtl {
				ctl, path, err := ctlConfig(opts)
				if err != nil {
					return err
				}
				ctl.Key = updated.Secret
				if err := config.SaveCtlConfig(path, ctl); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				fmt.Fprintf(out, "Key written to %s\n", path)
			}

			printNextSteps(out, answers.NewSecret, updated.Secret)
			return nil
		},
	}
}

func runInitWizard(current config.Settings) (initAnswers, error) {
	a := initAnswers{
		EndpointURL:         current.EndpointURL,
		NewSecret:           current.Secret == "",
		AllowedDomains:      current.AllowedDomains,
		AdminEmails:         current.AdminEmails,
		HideRestrictedMenus: current.HideRestrictedMenus,
	}

	secretTitle := "Generate a new shared secret?"
	if current.Secret == "" {
		secretTitle = "No shared secret is configured. Generate one?"
	}

	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collector endpoint URL").
				Description("The inventory is POSTed here, e.g. https://collector.example.com/ingest").
				Value(&a.EndpointURL).
				Validate(validateEndpoint),
			huh.NewConfirm().
				Title(secretTitle).
				Description("The collector must be given the same secret.").
				Value(&a.NewSecret),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Allowed email domains").
				Description("Comma separated. Only these domains see the reporter's admin pages.").
				Placeholder("example.com, example.org").
				Value(&a.AllowedDomains),
			huh.NewInput().
				Title("Admin emails").
				Description("Comma separated. These may trigger a test send.").
				Value(&a.AdminEmails),
			huh.NewConfirm().
				Title("Hide restricted menu entries from other users?").
				Value(&a.HideRestrictedMenus),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Store the secret in your reporterctl config too?").
				Description("Lets 'reporterctl status' and 'send --remote' authenticate.").
				Value(&a.SaveCtl),
		),
	).Run(); err != nil {
		return a, err
	}
	return a, nil
}

func validateEndpoint(s string) error {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("must start with http:// or https://")
	}
	return nil
}

// applyAnswers merges wizard answers into s. Theme is left untouched.
func applyAnswers(s config.Settings, a initAnswers) (config.Settings, error) {
	if err := validateEndpoint(a.EndpointURL); err != nil {
		return s, fmt.Errorf("endpoint URL: %w", err)
	}
	s.EndpointURL = strings.TrimSpace(a.EndpointURL)
	s.AllowedDomains = strings.Join(config.SplitCSV(a.AllowedDomains), ",")
	s.AdminEmails = strings.Join(config.SplitCSV(a.AdminEmails), ",")
	s.HideRestrictedMenus = a.HideRestrictedMenus

	if a.NewSecret || s.Secret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			return s, fmt.Errorf("generating secret: %w", err)
		}
		s.Secret = secret
	}
	return s, nil
}

func printNextSteps(w io.Writer, newSecret bool, secret string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Done! Next steps:")
	step := 1
	if newSecret {
		fmt.Fprintf(w, "  %d. Give the collector this secret: %s\n", step, secret)
		step++
	}
	fmt.Fprintf(w, "  %d. Restart reporterd or wait for the next scheduled run\n", step)
	step++
	fmt.Fprintf(w, "  %d. Run: reporterctl send\n", step)
}
