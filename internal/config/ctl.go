package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KeyEnv overrides the key stored in the CLI config.
const KeyEnv = "PLUGINREPORTER_KEY"

// CtlConfig holds what reporterctl needs to talk to a running reporterd.
// Stored in ~/.config/pluginreporter/ctl.yaml.
type CtlConfig struct {
	Server string `yaml:"server"` // e.g. http://127.0.0.1:8790
	Key    string `yaml:"key"`
}

func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pluginreporter"), nil
}

// CtlConfigPath returns the default CLI config location.
func CtlConfigPath() (string, error) {
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ctl.yaml"), nil
}

// LoadCtlConfig reads the CLI config at path. A missing file is not an
// error; the env key and defaults still apply.
func LoadCtlConfig(path string) (*CtlConfig, error) {
	var cfg CtlConfig

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", path, err)
		}
	}

	// Env var overrides file key
	if k := os.Getenv(KeyEnv); k != "" {
		cfg.Key = k
	}
	if cfg.Server == "" {
		cfg.Server = "http://127.0.0.1:8790"
	}
	return &cfg, nil
}

// SaveCtlConfig writes cfg to path, creating the directory if needed.
func SaveCtlConfig(path string, cfg *CtlConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
