package ports

import (
	"context"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEvent) error
}

// AuditService handles one event taken off the queue.
type AuditService interface {
	Process(ctx context.Context, e domain.AuditEvent) error
}

// AuditPublisher enqueues events without blocking the caller.
type AuditPublisher interface {
	Publish(e domain.AuditEvent)
}
