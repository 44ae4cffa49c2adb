package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig is loaded from /etc/pluginreporter/server.yaml on the host.
type ServerConfig struct {
	Listen          string      `yaml:"listen"` // e.g. ":8790"
	LogDir          string      `yaml:"log_dir"`
	SiteURL         string      `yaml:"site_url"`
	PlatformVersion string      `yaml:"platform_version"`
	IdentityHeader  string      `yaml:"identity_header"`
	TokenKey        string      `yaml:"token_key"` // HMAC key for form tokens; random per process if empty
	Store           StoreConfig `yaml:"store"`
	Host            HostConfig  `yaml:"host"`
}

// StoreConfig selects the settings backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "memory", "file", "bolt" or "postgres"
	Path   string `yaml:"path"`   // file and bolt drivers
	DSN    string `yaml:"dsn"`    // postgres driver
}

// HostConfig points at the host application's plugin layout.
type HostConfig struct {
	ComponentsDir string `yaml:"components_dir"`
	StateFile     string `yaml:"state_file"`
	UpdatesFile   string `yaml:"updates_file"`
}

// LoadServerConfig reads and parses the server config file.
func LoadServerConfig(path string) (*ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg ServerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	if cfg.SiteURL == "" {
		return nil, fmt.Errorf("%s: 'site_url' is required", path)
	}
	if err := applyServerDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// NewServerConfig returns a config for siteURL with every default filled in.
func NewServerConfig(siteURL string) *ServerConfig {
	cfg := &ServerConfig{SiteURL: siteURL}
	applyServerDefaults(cfg)
	return cfg
}

func applyServerDefaults(cfg *ServerConfig) error {
	if cfg.Listen == "" {
		cfg.Listen = ":8790"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "/var/log/pluginreporter"
	}
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = "X-Forwarded-Email"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverFile
	}

	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if cfg.Store.Path == "" {
			cfg.Store.Path = "/etc/pluginreporter/settings.yaml"
		}
	case DriverBolt:
		if cfg.Store.Path == "" {
			cfg.Store.Path = "/var/lib/pluginreporter/settings.db"
		}
	case DriverPostgres:
		if cfg.Store.DSN == "" {
			return fmt.Errorf("'store.dsn' is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Host.ComponentsDir == "" {
		cfg.Host.ComponentsDir = "/var/lib/pluginreporter/plugins"
	}
	if cfg.Host.StateFile == "" {
		cfg.Host.StateFile = "/var/lib/pluginreporter/state.json"
	}
	if cfg.Host.UpdatesFile == "" {
		cfg.Host.UpdatesFile = "/var/lib/pluginreporter/updates.json"
	}
	return nil
}
