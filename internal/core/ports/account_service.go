package ports

import (
	"context"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	Account *domain.Account
}

// AccountService covers registration, sessions and profiles.
type AccountService interface {
	Register(ctx context.Context, body map[string]any) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Current(ctx context.Context, id domain.Identity) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	UpdateProfile(ctx context.Context, id domain.Identity, body map[string]any) (*domain.Account, error)
}
