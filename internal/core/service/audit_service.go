package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

type auditService struct {
	repo     ports.AuditRepository
	accounts ports.AccountRepository
	log      zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, accounts ports.AccountRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, accounts: accounts, log: log}
}

// Process persists e and applies its side effects. A login stamps the
// account's last login time even when the audit insert fails.
func (s *auditService) Process(ctx context.Context, e domain.AuditEvent) (err error) {
	ctx, span := tracer.Start(ctx, "AuditService.Process")
	defer func() { endSpan(span, err) }()

	if e.Action == domain.AuditAccountLogin {
		if err := s.accounts.TouchLastLogin(ctx, e.ResourceID, e.At); err != nil {
			s.log.Warn().Err(err).Str("account_id", e.ResourceID).Msg("failed to stamp last login")
		}
	}

	if err := s.repo.Insert(ctx, &e); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("action", e.Action).
		Str("resource_id", e.ResourceID).
		Str("actor", e.ActorID).
		Msg("audit event stored")
	return nil
}
