package servicetoken

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher counts fetches and returns tokens (or errors) in sequence.
type stubFetcher struct {
	mu      sync.Mutex
	calls   atomic.Int64
	results []fetchResult
	// gate, when set, blocks every fetch until it is closed.
	gate chan struct{}
}

type fetchResult struct {
	token *Token
	err   error
}

func (f *stubFetcher) Fetch(ctx context.Context) (*Token, error) {
	if f.gate != nil {
		<-f.gate
	}

	n := f.calls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return &Token{
			AccessToken: fmt.Sprintf("token-%d", n),
			TokenType:   "Bearer",
			ExpiresAt:   time.Now().UTC().Add(time.Hour),
		}, nil
	}

	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result.token, result.err
}

// evictingFetcher evicts the cache once, after the fetch has completed but
// before the flight publishes its result.
type evictingFetcher struct {
	inner *stubFetcher
	cache *Cache
	once  sync.Once
}

func (f *evictingFetcher) Fetch(ctx context.Context) (*Token, error) {
	token, err := f.inner.Fetch(ctx)
	f.once.Do(func() { f.cache.Evict() })
	return token, err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCache_GetToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReusesValidTokenWithoutFetching", func(t *testing.T) {
		fetcher := &stubFetcher{}
		cache := NewCache(fetcher, testLogger())

		first, err := cache.GetToken(ctx)
		require.NoError(t, err)

		second, err := cache.GetToken(ctx)
		require.NoError(t, err)

		assert.Equal(t, first.AccessToken, second.AccessToken)
		assert.Equal(t, int64(1), fetcher.calls.Load())
	})

	t.Run("Success_RefetchesExpiredToken", func(t *testing.T) {
		fetcher := &stubFetcher{}
		cache := NewCache(fetcher, testLogger())

		_, err := cache.GetToken(ctx)
		require.NoError(t, err)

		// Move the clock past the token expiry.
		cache.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

		_, err = cache.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), fetcher.calls.Load())
	})

	t.Run("Success_SingleFlightUnderConcurrency", func(t *testing.T) {
		gate := make(chan struct{})
		fetcher := &stubFetcher{gate: gate}
		cache := NewCache(fetcher, testLogger())

		const callers = 20
		tokens := make([]string, callers)
		errs := make([]error, callers)

		var started, done sync.WaitGroup
		started.Add(callers)
		done.Add(callers)

		for i := 0; i < callers; i++ {
			go func(i int) {
				defer done.Done()
				started.Done()
				token, err := cache.GetToken(ctx)
				if err == nil {
					tokens[i] = token.AccessToken
				}
				errs[i] = err
			}(i)
		}

		// Make sure all callers are in flight before releasing the fetch.
		started.Wait()
		close(gate)
		done.Wait()

		assert.Equal(t, int64(1), fetcher.calls.Load())
		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, tokens[0], tokens[i])
		}
	})

	t.Run("Error_FetchFailureLeavesCacheUntouched", func(t *testing.T) {
		fetcher := &stubFetcher{results: []fetchResult{
			{err: ErrUpstreamAuth},
			{token: &Token{
				AccessToken: "after-failure",
				TokenType:   "Bearer",
				ExpiresAt:   time.Now().UTC().Add(time.Hour),
			}},
		}}
		cache := NewCache(fetcher, testLogger())

		_, err := cache.GetToken(ctx)
		require.ErrorIs(t, err, ErrUpstreamAuth)

		// No partial token was stored; the next call fetches again.
		token, err := cache.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "after-failure", token.AccessToken)
		assert.Equal(t, int64(2), fetcher.calls.Load())
	})
}

func TestCache_Evict(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EvictThenGetFetchesFresh", func(t *testing.T) {
		fetcher := &stubFetcher{}
		cache := NewCache(fetcher, testLogger())

		before, err := cache.GetToken(ctx)
		require.NoError(t, err)

		cache.Evict()

		after, err := cache.GetToken(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, before.AccessToken, after.AccessToken)
		assert.Equal(t, int64(2), fetcher.calls.Load())
	})

	t.Run("Success_EvictionDuringFetchIsNeverOverwritten", func(t *testing.T) {
		fetcher := &stubFetcher{}
		evicting := &evictingFetcher{inner: fetcher}
		cache := NewCache(evicting, testLogger())
		evicting.cache = cache

		// The eviction lands while the first fetch is in flight, so its
		// token must not be cached.
		first, err := cache.GetToken(ctx)
		require.NoError(t, err)

		second, err := cache.GetToken(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, first.AccessToken, second.AccessToken)
		assert.Equal(t, int64(2), fetcher.calls.Load())
	})

	t.Run("Success_EvictIsIdempotent", func(t *testing.T) {
		fetcher := &stubFetcher{}
		cache := NewCache(fetcher, testLogger())

		cache.Evict()
		cache.Evict()

		_, err := cache.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), fetcher.calls.Load())
	})
}

func TestToken_Valid(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name  string
		token *Token
		want  bool
	}{
		{"valid token", &Token{AccessToken: "t", ExpiresAt: now.Add(time.Minute)}, true},
		{"expired token", &Token{AccessToken: "t", ExpiresAt: now.Add(-time.Minute)}, false},
		{"empty access token", &Token{ExpiresAt: now.Add(time.Minute)}, false},
		{"nil token", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.Valid(now))
		})
	}
}
