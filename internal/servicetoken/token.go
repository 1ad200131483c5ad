// Package servicetoken acquires and caches the machine-to-machine OAuth2
// bearer token used for server-to-server calls to the upstream identity API.
package servicetoken

import (
	"time"

	apperrors "github.com/allisson/idgate/internal/errors"
)

// ErrUpstreamAuth indicates the upstream token fetch failed (network error,
// non-2xx response, timeout, or empty payload). Callers decide whether to
// retry; the cache never retries internally.
var ErrUpstreamAuth = apperrors.Wrap(apperrors.ErrUnavailable, "upstream token fetch failed")

// Token is the cached service credential. ExpiresAt already accounts for the
// configured refresh margin, so a token is usable iff time.Now() is before it.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Valid reports whether the token can still be used at the given instant.
func (t *Token) Valid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return now.UTC().Before(t.ExpiresAt)
}
