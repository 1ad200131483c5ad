package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/allisson/idgate/internal/identity/domain"
)

// SessionService issues and verifies signed session tokens.
type SessionService interface {
	// Issue creates a signed session token for the username.
	Issue(username string) (token string, expiresAt time.Time, err error)

	// Verify validates a session token and returns the username it was
	// issued for. Returns ErrInvalidSession for missing, malformed, or
	// expired tokens.
	Verify(token string) (username string, err error)
}

const sessionIssuer = "idgate"

// sessionService implements SessionService with HMAC-signed JWTs.
type sessionService struct {
	secret     []byte
	expiration time.Duration
}

// NewSessionService creates a SessionService signing tokens with the given
// secret and expiration.
func NewSessionService(secret string, expiration time.Duration) SessionService {
	return &sessionService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// Issue creates an HS256-signed token carrying the username as subject.
func (s *sessionService) Issue(username string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.expiration)

	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Verify parses and validates the token, enforcing the signing method and
// issuer.
func (s *sessionService) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, domain.ErrInvalidSession
			}
			return s.secret, nil
		},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidSession
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", domain.ErrInvalidSession
	}

	return claims.Subject, nil
}
