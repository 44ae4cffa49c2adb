package api

import "time"

// Status values reported for an installed plugin.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// InventoryItem describes one installed plugin on the host.
type InventoryItem struct {
	Slug            string  `json:"slug"`
	Title           string  `json:"title"`
	Version         string  `json:"version"`
	Status          string  `json:"status"` // "active" or "inactive"
	AutoUpdate      bool    `json:"auto_update"`
	AvailableUpdate *string `json:"available_update"` // nil when no newer version is known
}

// InventoryPayload is the JSON body POSTed to the remote collector.
type InventoryPayload struct {
	SiteURL         string          `json:"site_url"`
	PlatformVersion string          `json:"platform_version"`
	ReporterVersion string          `json:"reporter_version"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Plugins         []InventoryItem `json:"plugins"`
}

// SendResponse is returned by POST /plugin-reporter/v1/send.
type SendResponse struct {
	Status      string `json:"status"` // "ok" or "error"
	SentAt      string `json:"sent_at,omitempty"`
	PluginCount int    `json:"plugin_count"`
}

// StatusResponse is returned by GET /plugin-reporter/v1/status.
type StatusResponse struct {
	Active    bool   `json:"active"`
	Plugin    string `json:"plugin"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	SiteURL   string `json:"site_url"`
	CheckedAt string `json:"checked_at"`
}

// Notice is a one-shot message shown on the settings view after a redirect.
type Notice struct {
	Text     string `json:"text"`
	Severity string `json:"severity"` // "success" or "error"
}

// SettingsView is the admin settings rendering. Secrets are never included.
type SettingsView struct {
	EndpointURL         string   `json:"endpoint_url"`
	SecretConfigured    bool     `json:"secret_configured"`
	AllowedDomains      []string `json:"allowed_domains"`
	HideRestrictedMenus bool     `json:"hide_restricted_menus"`
	Theme               string   `json:"theme"`
	SchedulerArmed      bool     `json:"scheduler_armed"`
	NextRun             string   `json:"next_run,omitempty"`
	Notice              *Notice  `json:"notice,omitempty"`
	Token               string   `json:"token"`           // for POST /admin/test-send
	LifecycleToken      string   `json:"lifecycle_token"` // for POST /admin/lifecycle/{action}
}

// MenuEntry is one admin navigation entry.
type MenuEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Path       string `json:"path"`
	Restricted bool   `json:"restricted"`
}
