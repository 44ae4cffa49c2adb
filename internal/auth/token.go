package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
)

// KeyHeader carries the shared secret on inbound collector requests.
const KeyHeader = "X-Reporter-Key"

// SecretFunc returns the currently configured shared secret.
type SecretFunc func(ctx context.Context) (string, error)

// Equal reports whether presented matches secret. Both sides are hashed to a
// fixed length first so the comparison time depends on neither the length nor
// the position of the first mismatch. Empty values never match.
func Equal(presented, secret string) bool {
	if presented == "" || secret == "" {
		return false
	}
	p := sha256.Sum256([]byte(presented))
	s := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(p[:], s[:]) == 1
}

// Middleware returns an HTTP middleware that validates the X-Reporter-Key
// header against the configured secret. Every failure is a bare 401: a
// missing header, a wrong key and an unconfigured secret look the same.
func Middleware(secret SecretFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			want, err := secret(r.Context())
			if err != nil {
				logger.Warn("cannot load shared secret", "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if want == "" {
				logger.Warn("rejecting collector request: no shared secret configured")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if !Equal(r.Header.Get(KeyHeader), want) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GenerateSecret returns 32 random bytes, hex encoded.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
