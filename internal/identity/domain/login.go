package domain

import "time"

// LoginInput carries a sign-in attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput carries the issued session after a successful sign-in.
type LoginOutput struct {
	SessionToken string
	ExpiresAt    time.Time
}
