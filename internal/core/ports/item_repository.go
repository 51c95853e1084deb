package ports

import (
	"context"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// ItemFilter carries the query parameters for listing items.
type ItemFilter struct {
	SellerID      string // empty = any seller
	Category      string
	Condition     string
	Search        string // partial, case-insensitive match on title
	OnlyAvailable bool
	Page          int // 1-based
	Limit         int // capped by the service
}

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	// FindByID returns domain.ErrInvalidID for a malformed id before any I/O.
	FindByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]*domain.Item, int64, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, onlyAvailable bool) (int64, error)
}
