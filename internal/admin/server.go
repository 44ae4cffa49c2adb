// Package admin serves the operator-facing surface: the settings view, the
// navigation menu, the manual test send and the scheduler switch.
//
// Pages other than the menu sit behind the access gate. State-changing
// routes also need a form token bound to the caller's session and an
// identity listed in the admin_emails setting.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flo-mic/pluginreporter/internal/access"
	"github.com/flo-mic/pluginreporter/internal/api"
	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
	"github.com/flo-mic/pluginreporter/internal/flash"
	"github.com/flo-mic/pluginreporter/internal/report"
)

// SessionCookie holds the caller's session id.
const SessionCookie = "pluginreporter_session"

// Form token actions.
const (
	ActionTestSend  = "test-send"
	ActionLifecycle = "lifecycle"
)

// TokenHeader may carry the form token instead of the _token form field.
const TokenHeader = "X-CSRF-Token"

// SettingsPath is where form submissions redirect to.
const SettingsPath = "/admin/settings"

// Sender runs one inventory cycle.
type Sender interface {
	Report(ctx context.Context, trigger report.Trigger) report.Result
}

// Schedule exposes the scheduler state shown on the settings view.
type Schedule interface {
	Armed() bool
	Next() (time.Time, bool)
}

// Lifecycle fires a named trigger such as "lifecycle.enable".
type Lifecycle interface {
	Fire(ctx context.Context, trigger string) error
}

// Options are the dependencies of the admin surface.
type Options struct {
	Store          config.Store
	Sender         Sender
	Flash          *flash.Store
	Tokens         *auth.FormTokens
	Schedule       Schedule
	Lifecycle      Lifecycle
	IdentityHeader string
	SafePath       string // where blocked pages redirect; defaults to "/"
	Logger         *slog.Logger
}

// Server serves the admin pages.
type Server struct {
	opts   Options
	logger *slog.Logger
}

// New fills in defaults for SafePath, IdentityHeader and Logger.
func New(opts Options) *Server {
	if opts.SafePath == "" {
		opts.SafePath = "/"
	}
	if opts.IdentityHeader == "" {
		opts.IdentityHeader = "X-Forwarded-Email"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{opts: opts, logger: logger}
}

// Routes returns the admin router, to be mounted at /admin.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.session)

	r.Get("/menu", s.handleMenu)

	r.Group(func(r chi.Router) {
		r.Use(access.Middleware(s.opts.IdentityHeader, s.policy, s.opts.SafePath, s.logger))
		r.Get("/settings", s.handleSettings)
		r.Post("/test-send", s.handleTestSend)
		r.Post("/lifecycle/{action}", s.handleLifecycle)
	})
	return r
}

func (s *Server) policy(ctx context.Context) (access.Policy, error) {
	settings, err := s.opts.Store.Settings(ctx)
	if err != nil {
		return access.Policy{}, err
	}
	return access.ParseDomains(settings.AllowedDomains), nil
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.opts.Store.Settings(r.Context())
	if err != nil {
		s.logger.Error("cannot load settings", "err", err)
		http.Error(w, "settings unavailable", http.StatusInternalServerError)
		return
	}
	session := sessionFrom(r.Context())

	view := api.SettingsView{
		EndpointURL:         settings.EndpointURL,
		SecretConfigured:    settings.Secret != "",
		AllowedDomains:      access.ParseDomains(settings.AllowedDomains).AllowedDomains,
		HideRestrictedMenus: settings.HideRestrictedMenus,
		Theme:               settings.Theme,
		Token:               s.opts.Tokens.Issue(session, ActionTestSend),
		LifecycleToken:      s.opts.Tokens.Issue(session, ActionLifecycle),
	}
	if s.opts.Schedule != nil {
		view.SchedulerArmed = s.opts.Schedule.Armed()
		if next, ok := s.opts.Schedule.Next(); ok {
			view.NextRun = next.UTC().Format(time.RFC3339)
		}
	}
	if msg, ok := s.opts.Flash.Take(session); ok {
		view.Notice = &api.Notice{Text: msg.Text, Severity: string(msg.Severity)}
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, view)
}

var menu = []api.MenuEntry{
	{ID: "dashboard", Title: "Dashboard", Path: "/admin/dashboard"},
	{ID: "plugin-reporter", Title: "Plugin Reporter", Path: SettingsPath, Restricted: true},
	{ID: "plugins", Title: "Plugins", Path: "/admin/plugins", Restricted: true},
	{ID: "tools", Title: "Tools", Path: "/admin/tools", Restricted: true},
	{ID: "profile", Title: "Profile", Path: "/admin/profile"},
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	settings, err := s.opts.Store.Settings(r.Context())
	if err != nil {
		s.logger.Warn("cannot load settings for menu", "err", err)
	}
	id := access.FromRequest(r, s.opts.IdentityHeader)
	permitted := access.IsPermitted(id, access.ParseDomains(settings.AllowedDomains))
	writeJSON(w, http.StatusOK, access.FilterMenu(menu, permitted, settings.HideRestrictedMenus))
}

// handleTestSend runs a manual cycle and defers its outcome to the next
// settings view.
func (s *Server) handleTestSend(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, ActionTestSend) {
		return
	}

	res := s.opts.Sender.Report(r.Context(), report.TriggerManual)
	msg := flash.Message{Text: res.Message, Severity: flash.Success}
	if !res.OK() {
		msg = flash.Message{Text: "Test send failed: " + res.Message, Severity: flash.Error}
	}
	s.opts.Flash.Put(sessionFrom(r.Context()), msg)

	http.Redirect(w, r, SettingsPath, http.StatusSeeOther)
}

func (s *Server) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action != "enable" && action != "disable" {
		http.NotFound(w, r)
		return
	}
	if !s.authorize(w, r, ActionLifecycle) {
		return
	}

	msg := flash.Message{Text: "Scheduled reporting " + action + "d", Severity: flash.Success}
	if err := s.opts.Lifecycle.Fire(r.Context(), "lifecycle."+action); err != nil {
		s.logger.Error("lifecycle trigger failed", "action", action, "err", err)
		msg = flash.Message{Text: "Could not " + action + " scheduled reporting", Severity: flash.Error}
	}
	s.opts.Flash.Put(sessionFrom(r.Context()), msg)

	http.Redirect(w, r, SettingsPath, http.StatusSeeOther)
}

// authorize checks the form token and admin privilege. On failure it writes
// a bare 403 and returns false.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, action string) bool {
	token := r.PostFormValue("_token")
	if token == "" {
		token = r.Header.Get(TokenHeader)
	}
	if !s.opts.Tokens.Verify(token, sessionFrom(r.Context()), action) {
		s.logger.Warn("rejected admin action: bad form token", "action", action)
		w.WriteHeader(http.StatusForbidden)
		return false
	}

	settings, err := s.opts.Store.Settings(r.Context())
	if err != nil {
		s.logger.Error("cannot load settings", "err", err)
		w.WriteHeader(http.StatusForbidden)
		return false
	}
	id, _ := access.FromContext(r.Context())
	if !settings.IsAdmin(id.Email) {
		s.logger.Warn("rejected admin action: not an admin", "action", action, "email", id.Email)
		w.WriteHeader(http.StatusForbidden)
		return false
	}
	return true
}

type sessionKey struct{}

// session makes sure every admin request carries a session id, issuing a
// cookie on first contact.
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/admin",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
