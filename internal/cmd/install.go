package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flo-mic/pluginreporter/internal/config"
)

const unitName = "reporterd.service"

const unitTemplate = `[Unit]
Description=Plugin inventory reporter
After=network.target

[Service]
Type=simple
ExecStart=%s --config %s
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`

// systemctl runs systemctl; replaced in tests.
var systemctl = func(log io.Writer, args ...string) error {
	fmt.Fprintf(log, "[reporterctl] systemctl %v\n", args)
	c := exec.Command("systemctl", args...)
	c.Stdout = log
	c.Stderr = log
	if err := c.Run(); err != nil {
		return fmt.Errorf("systemctl %v: %w", args, err)
	}
	return nil
}

type installOptions struct {
	root        string
	binary      string
	siteURL     string
	noSystemctl bool
}

func newInstallCommand(opts *RootOptions) *cobra.Command {
	o := installOptions{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install reporterd as a systemd service on this host",
		Long: `Write the systemd unit and, if missing, a server config with defaults,
then enable and start reporterd.

An existing server config is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.OutOrStdout(), opts.ConfigPath, o)
		},
	}
	cmd.Flags().StringVar(&o.root, "root", "/", "filesystem root to install into")
	cmd.Flags().StringVar(&o.binary, "binary", "/usr/local/bin/reporterd", "path of the reporterd binary on the host")
	cmd.Flags().StringVar(&o.siteURL, "site-url", "", "site URL for a new server config")
	cmd.Flags().BoolVar(&o.noSystemctl, "no-systemctl", false, "only write files")
	return cmd
}

func runInstall(out io.Writer, configPath string, o installOptions) error {
	cfgFile := filepath.Join(o.root, configPath)

	cfg, err := config.LoadServerConfig(cfgFile)
	switch {
	case err == nil:
		fmt.Fprintf(out, "[reporterctl] Keeping existing %s\n", cfgFile)
	case errors.Is(err, fs.ErrNotExist):
		if o.siteURL == "" {
			return fmt.Errorf("%s does not exist; pass --site-url to create it", cfgFile)
		}
		cfg = config.NewServerConfig(o.siteURL)
		if err := writeServerConfig(cfgFile, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "[reporterctl] Created %s\n", cfgFile)
	default:
		return err
	}

	for _, dir := range installDirs(cfg) {
		if err := os.MkdirAll(filepath.Join(o.root, dir), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	unitPath := filepath.Join(o.root, "etc", "systemd", "system", unitName)
	if err := os.MkdirAll(filepath.Dir(unitPath), 0755); err != nil {
		return err
	}
	unit := fmt.Sprintf(unitTemplate, o.binary, configPath)
	if err := os.WriteFile(unitPath, []byte(unit), 0644); err != nil {
		return fmt.Errorf("writing unit: %w", err)
	}
	fmt.Fprintf(out, "[reporterctl] Wrote %s\n", unitPath)

	if o.noSystemctl {
		return nil
	}
	if err := systemctl(out, "daemon-reload"); err != nil {
		return err
	}
	if err := systemctl(out, "enable", "--now", unitName); err != nil {
		return err
	}
	fmt.Fprintf(out, "[reporterctl] reporterd installed and running\n")
	return nil
}

func writeServerConfig(path string, cfg *config.ServerConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// installDirs lists the directories reporterd writes to or reads from.
func installDirs(cfg *config.ServerConfig) []string {
	dirs := []string{cfg.LogDir, cfg.Host.ComponentsDir}
	if cfg.Store.Path != "" {
		dirs = append(dirs, filepath.Dir(cfg.Store.Path))
	}
	return dirs
}
