package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mercadito/marketplace-api/internal/core/domain"
	"github.com/mercadito/marketplace-api/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

// Insert persists an audit event to the audit_events collection.
func (r *AuditRepository) Insert(ctx context.Context, e *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"action":        e.Action,
		"resource_type": e.ResourceType,
		"resource_id":   e.ResourceID,
		"actor_id":      e.ActorID,
		"at":            e.At.UTC(),
		"processed_at":  time.Now().UTC(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}
