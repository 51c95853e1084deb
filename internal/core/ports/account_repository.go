package ports

import (
	"context"
	"time"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// Unique account identifiers looked up by ExistsBy.
const (
	AccountFieldUsername    = "username"
	AccountFieldEmail       = "email"
	AccountFieldPhoneNumber = "phoneNumber"
)

// AccountChanges carries the fields of a profile update. Nil means unchanged.
type AccountChanges struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	FirstName      *string
	LastName       *string
	PhoneNumber    *string
	ProfilePicture *string
	SellerRating   *float64
}

// IsEmpty reports whether no field would be written.
func (c AccountChanges) IsEmpty() bool {
	return c.Username == nil && c.Email == nil && c.PasswordHash == nil &&
		c.FirstName == nil && c.LastName == nil && c.PhoneNumber == nil &&
		c.ProfilePicture == nil && c.SellerRating == nil
}

// AccountRepository is the credential store.
type AccountRepository interface {
	// Create persists a new account and sets its ID. A unique index violation
	// is reported as *domain.ConflictError.
	Create(ctx context.Context, a *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsBy(ctx context.Context, field, value string) (bool, error)
	// Count returns the number of accounts with the given role, or all
	// accounts when role is empty.
	Count(ctx context.Context, role string) (int64, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Update(ctx context.Context, id string, changes AccountChanges) (*domain.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
