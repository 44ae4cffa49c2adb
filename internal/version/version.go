// Package version identifies this build of the reporter.
package version

// Set at build time with -ldflags "-X github.com/flo-mic/pluginreporter/internal/version.Version=...".
var Version = "dev"

const (
	// Slug is the reporter's own plugin identifier on the host.
	Slug = "plugin-reporter"
	// Name is the human readable plugin name.
	Name = "Plugin Reporter"
)

// UserAgent is sent on outbound requests.
func UserAgent() string { return "pluginreporter/" + Version }
