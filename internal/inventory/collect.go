package inventory

import (
	"log/slog"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/jonboulle/clockwork"

	"github.com/flo-mic/pluginreporter/internal/api"
)

// Options identify the site in every payload.
type Options struct {
	SiteURL         string
	PlatformVersion string
	ReporterVersion string
	Clock           clockwork.Clock
	Logger          *slog.Logger
}

// Collector builds inventory payloads from a Host.
type Collector struct {
	host Host
	opts Options
}

// NewCollector returns a collector reading from host.
func NewCollector(host Host, opts Options) *Collector {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Collector{host: host, opts: opts}
}

// Collect never fails. Each broken source degrades only the fields it
// feeds: no components means an empty list, no active set means every
// plugin is inactive, no auto-update set means false, no update index
// means no available update. Items are ordered by slug.
func (c *Collector) Collect() api.InventoryPayload {
	log := c.opts.Logger

	components, err := c.host.Components()
	if err != nil {
		log.Warn("inventory: cannot list components", "err", err)
		components = nil
	}
	active, err := c.host.ActiveSet()
	if err != nil {
		log.Warn("inventory: cannot read active set", "err", err)
		active = nil
	}
	auto, err := c.host.AutoUpdateSet()
	if err != nil {
		log.Warn("inventory: cannot read auto-update set", "err", err)
		auto = nil
	}
	updates, err := c.host.AvailableUpdates()
	if err != nil {
		log.Warn("inventory: cannot read update index", "err", err)
		updates = nil
	}

	items := make([]api.InventoryItem, 0, len(components))
	for _, comp := range components {
		status := api.StatusInactive
		if active[comp.Slug] {
			status = api.StatusActive
		}
		item := api.InventoryItem{
			Slug:       comp.Slug,
			Title:      comp.Title,
			Version:    comp.Version,
			Status:     status,
			AutoUpdate: auto[comp.Slug],
		}
		if next, ok := updates[comp.Slug]; ok && isNewer(next, comp.Version) {
			v := next
			item.AvailableUpdate = &v
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Slug < items[j].Slug })

	return api.InventoryPayload{
		SiteURL:         c.opts.SiteURL,
		PlatformVersion: c.opts.PlatformVersion,
		ReporterVersion: c.opts.ReporterVersion,
		GeneratedAt:     c.opts.Clock.Now().UTC(),
		Plugins:         items,
	}
}

// isNewer reports whether available is a newer release than installed.
// Non-semver versions fall back to "different means newer".
func isNewer(available, installed string) bool {
	if available == "" {
		return false
	}
	a, errA := semver.NewVersion(available)
	i, errI := semver.NewVersion(installed)
	if errA != nil || errI != nil {
		return available != installed
	}
	return a.GreaterThan(i)
}
