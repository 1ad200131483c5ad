// Package lockout tracks authentication outcomes per identity and converts a
// run of failures into an account-blocked state consulted by the login path.
package lockout

import (
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
)

// TopicAuthOutcome is the event bus topic authentication outcomes are
// published on.
const TopicAuthOutcome = "auth.outcome"

// Outcome is an authentication-outcome event. Identity carries the attempted
// username; an empty identity is ignored by the tracker.
type Outcome struct {
	Identity string
	Success  bool
}

// record is the per-identity failure state.
//
// State machine: Clear -> Warned(n) -> Blocked. A success fully resets the
// counter; the counter also resets when the tracking window elapses. Blocked
// is terminal here - unblocking is an administrative action outside this
// component.
type record struct {
	failures    int
	windowStart time.Time
	blocked     bool
}

// Tracker observes authentication outcomes and answers blocked-state queries.
// State is in-memory only; a process restart clears all lockouts.
type Tracker struct {
	mu        sync.Mutex
	records   map[string]*record
	threshold int
	window    time.Duration
	logger    *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker creates a Tracker that blocks an identity after threshold
// consecutive failures within the tracking window.
func NewTracker(threshold int, window time.Duration, logger *slog.Logger) *Tracker {
	return &Tracker{
		records:   make(map[string]*record),
		threshold: threshold,
		window:    window,
		logger:    logger,
		now:       time.Now,
	}
}

// Subscribe registers the tracker as an async consumer of authentication
// outcomes on the given bus.
func (t *Tracker) Subscribe(bus EventBus.Bus) error {
	return bus.SubscribeAsync(TopicAuthOutcome, t.Handle, false)
}

// Unsubscribe removes the tracker from the bus.
func (t *Tracker) Unsubscribe(bus EventBus.Bus) error {
	return bus.Unsubscribe(TopicAuthOutcome, t.Handle)
}

// Handle applies a single outcome event. Events for identities the tracker
// has never seen are treated as a Clear baseline; events with an empty
// identity take no action.
func (t *Tracker) Handle(outcome Outcome) {
	if outcome.Identity == "" {
		return
	}

	if outcome.Success {
		t.RecordSuccess(outcome.Identity)
		return
	}
	t.RecordFailure(outcome.Identity)
}

// RecordFailure increments the failure count for the identity, blocking it
// once the threshold is reached within the window.
func (t *Tracker) RecordFailure(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	rec, ok := t.records[identity]
	if !ok {
		rec = &record{}
		t.records[identity] = rec
	}

	if rec.blocked {
		return
	}

	// The window restarts when it elapses; only consecutive failures inside
	// one window count toward the threshold.
	if rec.failures == 0 || now.Sub(rec.windowStart) > t.window {
		rec.failures = 0
		rec.windowStart = now
	}

	rec.failures++

	if rec.failures >= t.threshold {
		rec.blocked = true
		t.logger.Warn("account blocked after repeated authentication failures",
			slog.String("identity", identity),
			slog.Int("failures", rec.failures))
		return
	}

	t.logger.Debug("authentication failure recorded",
		slog.String("identity", identity),
		slog.Int("failures", rec.failures))
}

// RecordSuccess fully resets the failure count for the identity. A blocked
// identity stays blocked; success events cannot unblock it.
func (t *Tracker) RecordSuccess(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[identity]
	if !ok || rec.blocked {
		return
	}

	delete(t.records, identity)
}

// IsBlocked reports whether the identity is in the Blocked state. The login
// path consults this before any credential verification.
func (t *Tracker) IsBlocked(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[identity]
	return ok && rec.blocked
}
