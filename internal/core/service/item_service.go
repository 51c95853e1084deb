package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
	"github.com/mercadito/marketplace-api/internal/core/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type itemService struct {
	repo        ports.ItemRepository
	idempotency ports.IdempotencyStore
	validator   *validation.Validator
	audit       ports.AuditPublisher
	log         zerolog.Logger
	now         func() time.Time
}

// NewItemService returns an ItemService implementation. idempotency may be
// nil, in which case Idempotency-Keys are only checked for format.
func NewItemService(
	repo ports.ItemRepository,
	idempotency ports.IdempotencyStore,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) ports.ItemService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &itemService{
		repo:        repo,
		idempotency: idempotency,
		validator:   validation.New(),
		audit:       audit,
		log:         log,
		now:         time.Now,
	}
}

func (s *itemService) List(ctx context.Context, id domain.Identity, f ports.ItemFilter) (*ports.ItemPage, error) {
	ctx, span := tracer.Start(ctx, "ItemService.List")
	defer span.End()

	if !id.IsAdmin() {
		f.OnlyAvailable = true
	}
	return s.list(ctx, f)
}

// ListOwned lists the caller's own items, including unavailable ones.
func (s *itemService) ListOwned(ctx context.Context, id domain.Identity, f ports.ItemFilter) (*ports.ItemPage, error) {
	ctx, span := tracer.Start(ctx, "ItemService.ListOwned")
	defer span.End()

	if id.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	f.SellerID = id.SubjectID
	f.OnlyAvailable = false
	return s.list(ctx, f)
}

func (s *itemService) list(ctx context.Context, f ports.ItemFilter) (*ports.ItemPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return &ports.ItemPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *itemService) Get(ctx context.Context, id domain.Identity, itemID string) (*domain.Item, error) {
	ctx, span := tracer.Start(ctx, "ItemService.Get")
	defer span.End()

	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Availability && !domain.Authorize(id, domain.ActionReadPrivate, item.SellerID).Allowed {
		return nil, &domain.NotFoundError{Resource: "item", ID: itemID}
	}
	return item, nil
}

// Create lists a new item owned by id. A repeated idempotencyKey from the
// same seller returns the item created the first time.
func (s *itemService) Create(ctx context.Context, id domain.Identity, body map[string]any, idempotencyKey string) (res *ports.CreateItemResult, err error) {
	ctx, span := tracer.Start(ctx, "ItemService.Create")
	defer func() { endSpan(span, err) }()

	if id.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if idempotencyKey != "" {
		if _, perr := uuid.Parse(idempotencyKey); perr != nil {
			return nil, domain.ErrInvalidIdempotencyKey
		}
	}

	in, err := s.validator.Validate(ctx, itemCreateRules, validation.Strip(body, itemSystemFields...))
	if err != nil {
		return nil, err
	}

	item := domain.NewItem()
	if err := decodeItem(normalizeItemBody(in), item); err != nil {
		return nil, err
	}

	var storeKey string
	if idempotencyKey != "" && s.idempotency != nil {
		storeKey = id.SubjectID + ":" + idempotencyKey
		itemID, reserved, err := s.idempotency.Reserve(ctx, storeKey)
		if err != nil {
			return nil, fmt.Errorf("create item: reserve idempotency key: %w", err)
		}
		if !reserved {
			if itemID == "" {
				return nil, domain.ErrIdempotencyInFlight
			}
			existing, err := s.repo.FindByID(ctx, itemID)
			if err != nil {
				return nil, fmt.Errorf("create item: replay: %w", err)
			}
			s.log.Info().Str("idempotency_key", idempotencyKey).Str("item_id", itemID).Msg("idempotent replay")
			return &ports.CreateItemResult{Item: existing, Replayed: true}, nil
		}
	}

	now := s.now().UTC()
	item.SellerID = id.SubjectID
	item.Slug = slug.Make(item.Title)
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.Create(ctx, item); err != nil {
		if storeKey != "" {
			if rerr := s.idempotency.Release(ctx, storeKey); rerr != nil {
				s.log.Warn().Err(rerr).Str("idempotency_key", idempotencyKey).Msg("failed to release idempotency key")
			}
		}
		s.log.Error().Err(err).Msg("failed to create item")
		return nil, err
	}
	if storeKey != "" {
		if cerr := s.idempotency.Complete(ctx, storeKey, item.ID); cerr != nil {
			s.log.Warn().Err(cerr).Str("idempotency_key", idempotencyKey).Msg("failed to complete idempotency key")
		}
	}
	span.SetAttributes(attribute.String("item.id", item.ID), attribute.String("item.seller", item.SellerID))

	s.audit.Publish(domain.AuditEvent{
		Action:       domain.AuditItemCreated,
		ResourceType: "item",
		ResourceID:   item.ID,
		ActorID:      id.SubjectID,
		At:           now,
	})
	s.log.Info().Str("item_id", item.ID).Str("seller", item.SellerID).Msg("item created")
	return &ports.CreateItemResult{Item: item}, nil
}

// Update applies a partial body to an item owned by id, or to any item when
// id is an admin. The seller never changes.
func (s *itemService) Update(ctx context.Context, id domain.Identity, itemID string, body map[string]any) (item *domain.Item, err error) {
	ctx, span := tracer.Start(ctx, "ItemService.Update")
	defer func() { endSpan(span, err) }()

	if id.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	current, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	in, err := s.validator.Validate(ctx, itemUpdateRules, validation.Strip(body, itemSystemFields...))
	if err != nil {
		return nil, err
	}

	if err := s.authorize(id, domain.ActionUpdate, current); err != nil {
		return nil, err
	}

	item, err = patchItem(current, normalizeItemBody(in))
	if err != nil {
		return nil, err
	}
	if item.Title != current.Title {
		item.Slug = slug.Make(item.Title)
	}
	item.ID = current.ID
	item.SellerID = current.SellerID
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.audit.Publish(domain.AuditEvent{
		Action:       domain.AuditItemUpdated,
		ResourceType: "item",
		ResourceID:   item.ID,
		ActorID:      id.SubjectID,
		At:           item.UpdatedAt,
	})
	s.log.Info().Str("item_id", item.ID).Str("actor", id.SubjectID).Msg("item updated")
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, id domain.Identity, itemID string) (err error) {
	ctx, span := tracer.Start(ctx, "ItemService.Delete")
	defer func() { endSpan(span, err) }()

	if id.IsZero() {
		return domain.ErrUnauthenticated
	}
	current, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.authorize(id, domain.ActionDelete, current); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return err
	}

	s.audit.Publish(domain.AuditEvent{
		Action:       domain.AuditItemDeleted,
		ResourceType: "item",
		ResourceID:   current.ID,
		ActorID:      id.SubjectID,
		At:           s.now().UTC(),
	})
	s.log.Info().Str("item_id", current.ID).Str("actor", id.SubjectID).Msg("item deleted")
	return nil
}

func (s *itemService) authorize(id domain.Identity, action domain.Action, item *domain.Item) error {
	d := domain.Authorize(id, action, item.SellerID)
	if !d.Allowed {
		s.log.Warn().
			Str("subject", id.SubjectID).
			Str("action", string(action)).
			Str("item_id", item.ID).
			Str("reason", d.Reason).
			Msg("authorization denied")
	}
	return d.Err()
}

// normalizeItemBody wraps a single payment option into a list.
func normalizeItemBody(in map[string]any) map[string]any {
	if p, ok := in["paymentOptions"].(string); ok {
		in["paymentOptions"] = []any{p}
	}
	return in
}

// patchItem returns a copy of current with the fields of in applied. Top-level
// fields are replaced; location and attributes are merged one level deep.
// Null values leave the stored field untouched.
func patchItem(current *domain.Item, in map[string]any) (*domain.Item, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("patch item: %w", err)
	}
	merged := map[string]any{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("patch item: %w", err)
	}

	for k, v := range in {
		if v == nil {
			continue
		}
		if k == "location" || k == "attributes" {
			if sub, ok := v.(map[string]any); ok {
				base, _ := merged[k].(map[string]any)
				if base == nil {
					base = map[string]any{}
				}
				for sk, sv := range sub {
					if sv != nil {
						base[sk] = sv
					}
				}
				merged[k] = base
				continue
			}
		}
		merged[k] = v
	}

	out := &domain.Item{}
	if err := decodeItem(merged, out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeItem(in map[string]any, out *domain.Item) error {
	if err := validation.Decode(in, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &validation.Errors{Messages: []string{fmt.Sprintf("%s has an invalid type", typeErr.Field)}}
		}
		return fmt.Errorf("decode item: %w", err)
	}
	return nil
}
