// Package http provides HTTP handlers and middleware for identity
// operations.
package http

import (
	"context"
)

// usernameKey is a context key type for storing the authenticated username.
type usernameKey struct{}

// WithUsername stores an authenticated username in the context.
// This is typically called by the session middleware after successful token
// verification.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey{}, username)
}

// GetUsername retrieves the authenticated username from the context.
// Returns (username, true) if present, or ("", false) if no session was
// established.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey{}).(string)
	return username, ok
}
