package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// FormTokenTTL is how long an issued form token stays valid.
const FormTokenTTL = 12 * time.Hour

// FormTokens issues and verifies tokens that bind a state-changing admin
// form submission to a session and an action name.
//
// Token format: "<expiry-unix>.<base64url(HMAC-SHA256(key, session|action|expiry))>".
type FormTokens struct {
	key   []byte
	clock clockwork.Clock
	ttl   time.Duration
}

// NewFormTokens returns a token issuer. An empty key is replaced by 32
// random bytes, which invalidates outstanding tokens on restart.
func NewFormTokens(key []byte, clock clockwork.Clock) (*FormTokens, error) {
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FormTokens{key: key, clock: clock, ttl: FormTokenTTL}, nil
}

// Issue returns a token for session and action.
func (f *FormTokens) Issue(session, action string) string {
	expiry := f.clock.Now().Add(f.ttl).Unix()
	return strconv.FormatInt(expiry, 10) + "." + base64.RawURLEncoding.EncodeToString(f.mac(session, action, expiry))
}

// Verify reports whether token was issued for session and action and has not expired.
func (f *FormTokens) Verify(token, session, action string) bool {
	if token == "" || session == "" {
		return false
	}
	expiryStr, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return false
	}
	if f.clock.Now().Unix() > expiry {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return false
	}
	return hmac.Equal(got, f.mac(session, action, expiry))
}

func (f *FormTokens) mac(session, action string, expiry int64) []byte {
	h := hmac.New(sha256.New, f.key)
	h.Write([]byte(session))
	h.Write([]byte{0})
	h.Write([]byte(action))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(expiry, 10)))
	return h.Sum(nil)
}
