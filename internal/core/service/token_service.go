package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

const minSecretLength = 32

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs session tokens with HMAC-SHA256.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	timeFunc func() time.Time
}

var _ ports.TokenService = (*TokenService)(nil)

func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, timeFunc: time.Now}, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(subjectID, role string) (string, error) {
	now := s.timeFunc()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry(now, s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// expiry rounds now+ttl up to a whole second. NumericDate truncates, and a
// token must never lapse before its full ttl.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if t := exp.Truncate(time.Second); t.Before(exp) {
		return t.Add(time.Second)
	}
	return exp
}

func (s *TokenService) Verify(token string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.timeFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrExpiredToken
		}
		return domain.Identity{}, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return domain.Identity{SubjectID: claims.Subject, Role: claims.Role}, nil
}
