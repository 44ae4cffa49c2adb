package access

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/flo-mic/pluginreporter/internal/api"
)

// PolicyFunc loads the current policy, typically from the settings store.
type PolicyFunc func(ctx context.Context) (Policy, error)

type ctxKey struct{}

// FromRequest reads the identity from the trusted header set by the
// authenticating proxy in front of the daemon.
func FromRequest(r *http.Request, header string) Identity {
	return Identity{Email: strings.TrimSpace(r.Header.Get(header))}
}

// FromContext returns the identity stored by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware blocks restricted pages. Denied requests, including requests
// for which the policy cannot be loaded, are redirected to safePath.
// Permitted requests carry the identity in their context.
func Middleware(header string, policy PolicyFunc, safePath string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromRequest(r, header)
			p, err := policy(r.Context())
			if err != nil {
				logger.Warn("cannot load access policy", "err", err)
				http.Redirect(w, r, safePath, http.StatusFound)
				return
			}
			if !IsPermitted(id, p) {
				http.Redirect(w, r, safePath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		})
	}
}

// FilterMenu removes restricted entries when hiding is enabled and the
// identity is not permitted. The input slice is not modified.
func FilterMenu(entries []api.MenuEntry, permitted, hide bool) []api.MenuEntry {
	out := make([]api.MenuEntry, 0, len(entries))
	for _, e := range entries {
		if e.Restricted && hide && !permitted {
			continue
		}
		out = append(out, e)
	}
	return out
}
