package ports

import (
	"time"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(subjectID, role string) (string, error)
	// Verify returns domain.ErrExpiredToken or domain.ErrInvalidToken on failure.
	Verify(token string) (domain.Identity, error)
	TTL() time.Duration
}

// PasswordHasher hashes and checks account secrets.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}
