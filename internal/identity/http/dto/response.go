package dto

import "time"

// LoginResponse contains the session issued after successful authentication.
type LoginResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserInfoResponse contains the profile data returned by the userinfo
// endpoint.
type UserInfoResponse struct {
	Subject    string `json:"subject"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}
