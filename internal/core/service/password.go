package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/mercadito/marketplace-api/internal/core/ports"
)

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

var _ ports.PasswordHasher = BcryptHasher{}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
