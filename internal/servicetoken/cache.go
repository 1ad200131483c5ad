package servicetoken

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// singleflight key for the one cached token slot.
const refreshKey = "service-token"

// Cache holds the process-wide service token. It is empty at startup and
// refreshed on demand: a valid token is reused without any network call,
// and concurrent cache-miss callers share a single upstream fetch.
type Cache struct {
	mu      sync.RWMutex
	token   *Token
	gen     uint64
	fetcher Fetcher
	group   singleflight.Group
	logger  *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewCache creates an empty Cache backed by the given fetcher.
func NewCache(fetcher Fetcher, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// GetToken returns a valid service token, fetching a new one only when the
// cached token is missing or expired. On fetch failure the cache keeps its
// prior state and the error propagates to the caller.
func (c *Cache) GetToken(ctx context.Context) (*Token, error) {
	if token := c.current(); token != nil {
		return token, nil
	}

	// All contenders that miss together share this one flight. The flight
	// re-checks validity first: a caller that raced in after publication
	// must not trigger a second fetch.
	result, err, _ := c.group.Do(refreshKey, func() (any, error) {
		if token := c.current(); token != nil {
			return token, nil
		}

		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		token, err := c.fetcher.Fetch(ctx)
		if err != nil {
			return nil, err
		}

		// An eviction that landed while the fetch was in flight makes this
		// token pre-eviction; callers of this flight still get it, but it
		// must not become the cached value.
		c.mu.Lock()
		if c.gen == gen {
			c.token = token
		}
		c.mu.Unlock()

		c.logger.Info("service token refreshed",
			slog.Time("expires_at", token.ExpiresAt))

		return token, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Token), nil
}

// Evict unconditionally discards the cached token regardless of its expiry
// state. It is idempotent and never fetches a replacement; the next GetToken
// call refreshes lazily.
func (c *Cache) Evict() {
	c.mu.Lock()
	c.token = nil
	c.gen++
	c.mu.Unlock()

	// Drop any in-flight refresh result so a post-eviction GetToken never
	// observes a token issued before the eviction.
	c.group.Forget(refreshKey)

	c.logger.Info("service token evicted")
}

// current returns the cached token if it is still valid, nil otherwise.
func (c *Cache) current() *Token {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token.Valid(c.now()) {
		return c.token
	}
	return nil
}
