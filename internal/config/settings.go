package config

import (
	"context"
	"os"
	"strconv"
	"strings"
)

// SecretEnv overrides the stored shared secret when set.
const SecretEnv = "PLUGINREPORTER_SECRET"

// Store drivers accepted in StoreConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// Settings are the admin-editable values the reporter reads on every request.
type Settings struct {
	EndpointURL         string `yaml:"endpoint_url"`
	Secret              string `yaml:"secret"`
	AllowedDomains      string `yaml:"allowed_domains"` // comma separated, as entered
	HideRestrictedMenus bool   `yaml:"hide_restricted_menus"`
	Theme               string `yaml:"theme"`
	AdminEmails         string `yaml:"admin_emails"` // comma separated
}

// Store is the persistent settings backend. The reporter only reads from it;
// writes come from the settings form and the CLI.
type Store interface {
	Settings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
}

// IsAdmin reports whether email is one of the configured admin emails.
// Emails compare case-insensitively.
func (s Settings) IsAdmin(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, admin := range SplitCSV(s.AdminEmails) {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// SplitCSV splits a comma separated list, trimming whitespace and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Setting keys used by the key/value backends.
const (
	keyEndpointURL         = "endpoint_url"
	keySecret              = "secret"
	keyAllowedDomains      = "allowed_domains"
	keyHideRestrictedMenus = "hide_restricted_menus"
	keyTheme               = "theme"
	keyAdminEmails         = "admin_emails"
)

func settingsToMap(s Settings) map[string]string {
	return map[string]string{
		keyEndpointURL:         s.EndpointURL,
		keySecret:              s.Secret,
		keyAllowedDomains:      s.AllowedDomains,
		keyHideRestrictedMenus: strconv.FormatBool(s.HideRestrictedMenus),
		keyTheme:               s.Theme,
		keyAdminEmails:         s.AdminEmails,
	}
}

// settingsFromMap ignores unknown keys; a malformed bool reads as false.
func settingsFromMap(m map[string]string) Settings {
	hide, _ := strconv.ParseBool(m[keyHideRestrictedMenus])
	return Settings{
		EndpointURL:         m[keyEndpointURL],
		Secret:              m[keySecret],
		AllowedDomains:      m[keyAllowedDomains],
		HideRestrictedMenus: hide,
		Theme:               m[keyTheme],
		AdminEmails:         m[keyAdminEmails],
	}
}

// WithSecretFromEnv wraps a store so that PLUGINREPORTER_SECRET, when set,
// replaces the stored secret on read.
func WithSecretFromEnv(s Store) Store {
	return envStore{Store: s}
}

type envStore struct {
	Store
}

func (e envStore) Settings(ctx context.Context) (Settings, error) {
	s, err := e.Store.Settings(ctx)
	if err != nil {
		return s, err
	}
	if v := os.Getenv(SecretEnv); v != "" {
		s.Secret = v
	}
	return s, nil
}
