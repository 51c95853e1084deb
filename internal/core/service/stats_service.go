package service

import (
	"context"
	"fmt"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

type statsService struct {
	accounts ports.AccountRepository
	items    ports.ItemRepository
}

func NewStatsService(accounts ports.AccountRepository, items ports.ItemRepository) ports.StatsService {
	return &statsService{accounts: accounts, items: items}
}

func (s *statsService) Stats(ctx context.Context) (*ports.Stats, error) {
	ctx, span := tracer.Start(ctx, "StatsService.Stats")
	defer span.End()

	var (
		st  ports.Stats
		err error
	)
	if st.Accounts, err = s.accounts.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("stats: count accounts: %w", err)
	}
	if st.Admins, err = s.accounts.Count(ctx, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("stats: count admins: %w", err)
	}
	if st.Items, err = s.items.Count(ctx, false); err != nil {
		return nil, fmt.Errorf("stats: count items: %w", err)
	}
	if st.AvailableItems, err = s.items.Count(ctx, true); err != nil {
		return nil, fmt.Errorf("stats: count available items: %w", err)
	}
	return &st, nil
}
