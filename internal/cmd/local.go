package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
	"github.com/flo-mic/pluginreporter/internal/inventory"
	"github.com/flo-mic/pluginreporter/internal/version"
)

// local is the host-side view used by commands that run without the daemon.
type local struct {
	cfg   *config.ServerConfig
	store config.Store
	close func() error
}

func openLocal(ctx context.Context, opts *RootOptions) (*local, error) {
	cfg, err := config.LoadServerConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	store, closeFn, err := config.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return &local{cfg: cfg, store: store, close: closeFn}, nil
}

func (l *local) collector(logger *slog.Logger) *inventory.Collector {
	return inventory.NewCollector(inventory.DirHost{
		ComponentsDir: l.cfg.Host.ComponentsDir,
		StateFile:     l.cfg.Host.StateFile,
		UpdatesFile:   l.cfg.Host.UpdatesFile,
		Logger:        logger,
	}, inventory.Options{
		SiteURL:         l.cfg.SiteURL,
		PlatformVersion: l.cfg.PlatformVersion,
		ReporterVersion: version.Version,
		Logger:          logger,
	})
}

// cliLogger writes warnings to w; the CLI stays quiet otherwise.
func cliLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func ctlConfig(opts *RootOptions) (*config.CtlConfig, string, error) {
	path := opts.CtlPath
	if path == "" {
		p, err := config.CtlConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadCtlConfig(path)
	return cfg, path, err
}

// remoteCall sends an authenticated request to the reporterd namespace.
func remoteCall(ctx context.Context, opts *RootOptions, method, path string) (*http.Response, error) {
	ctl, ctlPath, err := ctlConfig(opts)
	if err != nil {
		return nil, err
	}
	if ctl.Key == "" {
		return nil, fmt.Errorf("no key: set %s or add 'key:' to %s", config.KeyEnv, ctlPath)
	}

	url := strings.TrimRight(ctl.Server, "/") + "/plugin-reporter/v1" + path
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(auth.KeyHeader, ctl.Key)
	req.Header.Set("User-Agent", version.UserAgent())

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: rejected (check the key)", method, url)
	}
	return resp, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
