// Package maintenance implements the request-time switch that suspends the
// application for all requests except an allow-listed set of users and a
// small fixed set of infrastructure paths.
package maintenance

import "strings"

// Gate is the maintenance decision predicate. It is built once at startup
// from configuration and is read-only at request time, so it needs no
// locking.
type Gate struct {
	enabled bool
	allowed map[string]struct{}
}

// NewGate builds a Gate from the enabled flag and a comma-separated
// allow-list of usernames. Entries are trimmed and matched
// case-insensitively.
func NewGate(enabled bool, skipForUsers string) *Gate {
	allowed := make(map[string]struct{})
	for _, part := range strings.Split(skipForUsers, ",") {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	return &Gate{
		enabled: enabled,
		allowed: allowed,
	}
}

// Enabled reports whether maintenance mode is active.
func (g *Gate) Enabled() bool {
	return g.enabled
}

// Allow decides whether a request identified by username may proceed.
// With maintenance disabled every request is allowed. With maintenance
// enabled only allow-listed usernames pass; an empty username is denied.
func (g *Gate) Allow(username string) bool {
	if !g.enabled {
		return true
	}

	normalized := strings.ToLower(strings.TrimSpace(username))
	if normalized == "" {
		return false
	}

	_, ok := g.allowed[normalized]
	return ok
}
