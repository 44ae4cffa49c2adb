package inventory

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DirHost reads the plugin layout of a host application from disk:
//
//	<ComponentsDir>/<slug>/component.yaml   name + version per plugin
//	<StateFile>                             active and auto-update sets (JSON)
//	<UpdatesFile>                           slug -> newest version (JSON)
type DirHost struct {
	ComponentsDir string
	StateFile     string
	UpdatesFile   string
	Logger        *slog.Logger // nil means slog.Default()
}

// Components lists every directory under ComponentsDir that has a readable
// manifest. Directories without one, or with a manifest that does not parse,
// are skipped; a plugin without a name uses its slug as title.
func (h DirHost) Components() ([]Component, error) {
	entries, err := os.ReadDir(h.ComponentsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", h.ComponentsDir, err)
	}

	var out []Component
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(h.ComponentsDir, e.Name(), "component.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var m manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			h.logger().Warn("inventory: skipping plugin with unreadable manifest", "slug", e.Name(), "err", fmt.Errorf("cannot parse %s: %w", path, err))
			continue
		}
		title := m.Name
		if title == "" {
			title = e.Name()
		}
		out = append(out, Component{Slug: e.Name(), Title: title, Version: m.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (h DirHost) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h DirHost) ActiveSet() (map[string]bool, error) {
	st, err := loadHostState(h.StateFile)
	if err != nil {
		return nil, err
	}
	return toSet(st.Active), nil
}

func (h DirHost) AutoUpdateSet() (map[string]bool, error) {
	st, err := loadHostState(h.StateFile)
	if err != nil {
		return nil, err
	}
	return toSet(st.AutoUpdate), nil
}

func (h DirHost) AvailableUpdates() (map[string]string, error) {
	return loadUpdateIndex(h.UpdatesFile)
}
