// Package hooks maps named host events to the handlers that react to them.
// The registry is filled once at startup and then only read.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Trigger names the host events the reporter listens for.
const (
	ScheduledTick    = "scheduled.tick"
	LifecycleEnable  = "lifecycle.enable"
	LifecycleDisable = "lifecycle.disable"
)

// ErrUnknownTrigger is returned by Fire for a trigger with no handlers.
var ErrUnknownTrigger = errors.New("unknown trigger")

// Handler reacts to a fired trigger.
type Handler func(ctx context.Context) error

// Registry maps trigger names to handlers. Handlers are registered at startup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{handlers: make(map[string][]Handler), logger: logger}
}

// On appends h to the handlers of trigger. Handlers run in registration order.
func (r *Registry) On(trigger string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[trigger] = append(r.handlers[trigger], h)
}

// Fire runs every handler of trigger. A failing handler does not stop the
// ones after it; their errors are joined.
func (r *Registry) Fire(ctx context.Context, trigger string) error {
	r.mu.RLock()
	hs := r.handlers[trigger]
	r.mu.RUnlock()

	if len(hs) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, trigger)
	}

	r.logger.Debug("firing trigger", "trigger", trigger, "handlers", len(hs))
	var errs []error
	for i, h := range hs {
		if err := h(ctx); err != nil {
			r.logger.Warn("trigger handler failed", "trigger", trigger, "handler", i, "err", err)
			errs = append(errs, fmt.Errorf("%s handler %d: %w", trigger, i, err))
		}
	}
	return errors.Join(errs...)
}

// Triggers lists the registered trigger names, sorted.
func (r *Registry) Triggers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
