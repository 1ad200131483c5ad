// Package service provides identity-related services for credential
// verification and session token management.
package service

import (
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"
)

// CredentialService hashes plain passwords and verifies them against
// stored hashes.
type CredentialService interface {
	// Verify performs a constant-time comparison between a plain password
	// and its stored hash.
	Verify(plainPassword string, passwordHash string) bool

	// Hash hashes a plain password for storage.
	Hash(plainPassword string) (string, error)
}

// credentialService verifies Argon2id hashes, with a bcrypt fallback for
// accounts that predate the Argon2id migration.
type credentialService struct {
	hasher *pwdhash.PasswordHasher
}

// Verify checks the password against the stored hash. Hashes with a "$2"
// prefix are legacy bcrypt; everything else is Argon2id.
func (s *credentialService) Verify(plainPassword string, passwordHash string) bool {
	if strings.HasPrefix(passwordHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(plainPassword)) == nil
	}

	ok, err := s.hasher.Verify([]byte(plainPassword), passwordHash)
	if err != nil {
		return false
	}
	return ok
}

// Hash hashes a plain password using Argon2id. New and rehashed credentials
// always use Argon2id regardless of the hash they replace.
func (s *credentialService) Hash(plainPassword string) (string, error) {
	return s.hasher.Hash([]byte(plainPassword))
}

// NewCredentialService creates a CredentialService using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewCredentialService() CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &credentialService{
		hasher: hasher,
	}
}
