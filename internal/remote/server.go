// Package remote serves the collector-facing REST namespace.
//
// Every route requires the shared secret in the X-Reporter-Key header.
// POST /send runs an inventory cycle and reports how it went; GET /status
// is a liveness check that never touches the plugin inventory.
package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/flo-mic/pluginreporter/internal/api"
	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
	"github.com/flo-mic/pluginreporter/internal/report"
	"github.com/flo-mic/pluginreporter/internal/version"
)

// Namespace is where the daemon mounts Routes.
const Namespace = "/plugin-reporter/v1"

// Sender runs one inventory cycle.
type Sender interface {
	Report(ctx context.Context, trigger report.Trigger) report.Result
}

// Server serves the collector-facing namespace.
type Server struct {
	store   config.Store
	sender  Sender
	siteURL string
	clock   clockwork.Clock
	logger  *slog.Logger
}

// New returns a server reading the shared secret from store.
func New(store config.Store, sender Sender, siteURL string, clock clockwork.Clock, logger *slog.Logger) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, sender: sender, siteURL: siteURL, clock: clock, logger: logger}
}

// Routes returns the authenticated namespace router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Middleware(s.secret, s.logger))
	r.Post("/send", s.handleSend)
	r.Get("/status", s.handleStatus)
	return r
}

func (s *Server) secret(ctx context.Context) (string, error) {
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return "", err
	}
	return settings.Secret, nil
}

// handleSend delivers the inventory now. Failures return 502 without the
// result detail; the detail goes to the log.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	res := s.sender.Report(r.Context(), report.TriggerRemote)
	if !res.OK() {
		writeJSON(w, http.StatusBadGateway, api.SendResponse{Status: "error", PluginCount: res.ItemCount})
		return
	}
	writeJSON(w, http.StatusOK, api.SendResponse{
		Status:      "ok",
		SentAt:      res.Timestamp.UTC().Format(time.RFC3339),
		PluginCount: res.ItemCount,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.StatusResponse{
		Active:    true,
		Plugin:    version.Slug,
		Name:      version.Name,
		Version:   version.Version,
		SiteURL:   s.siteURL,
		CheckedAt: s.clock.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
