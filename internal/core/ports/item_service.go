package ports

import (
	"context"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// ItemPage is one page of a listing.
type ItemPage struct {
	Items []*domain.Item
	Total int64
	Page  int
	Limit int
}

// CreateItemResult reports the created item. Replayed is set when an
// Idempotency-Key matched an earlier creation.
type CreateItemResult struct {
	Item     *domain.Item
	Replayed bool
}

// ItemService manages listings on behalf of an identity.
type ItemService interface {
	// List shows every item to admins and only available items to anyone else.
	List(ctx context.Context, id domain.Identity, filter ItemFilter) (*ItemPage, error)
	ListOwned(ctx context.Context, id domain.Identity, filter ItemFilter) (*ItemPage, error)
	// Get hides unavailable items from everyone but their seller and admins.
	Get(ctx context.Context, id domain.Identity, itemID string) (*domain.Item, error)
	Create(ctx context.Context, id domain.Identity, body map[string]any, idempotencyKey string) (*CreateItemResult, error)
	Update(ctx context.Context, id domain.Identity, itemID string, body map[string]any) (*domain.Item, error)
	Delete(ctx context.Context, id domain.Identity, itemID string) error
}
