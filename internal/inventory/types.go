package inventory

// Component is one plugin installed on the host, as the host knows it.
type Component struct {
	Slug    string
	Title   string
	Version string
}

// Host is the host application's view of its installed plugins. Each
// method is an independent information source; the collector tolerates any
// of them failing.
type Host interface {
	Components() ([]Component, error)
	ActiveSet() (map[string]bool, error)
	AutoUpdateSet() (map[string]bool, error)
	// AvailableUpdates maps slug to the newest version published for it.
	AvailableUpdates() (map[string]string, error)
}

// hostState is the host's plugin state file:
//
//	{"active": ["akismet"], "auto_update": ["akismet"]}
type hostState struct {
	Active     []string `json:"active"`
	AutoUpdate []string `json:"auto_update"`
}

// manifest is <components_dir>/<slug>/component.yaml.
type manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}
