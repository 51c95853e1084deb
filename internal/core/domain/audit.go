package domain

import "time"

const (
	AuditAccountRegistered = "account.registered"
	AuditAccountLogin      = "account.login"
	AuditAccountUpdated    = "account.updated"
	AuditItemCreated       = "item.created"
	AuditItemUpdated       = "item.updated"
	AuditItemDeleted       = "item.deleted"
)

// AuditEvent records a state change made through the API.
type AuditEvent struct {
	Action       string
	ResourceType string
	ResourceID   string
	ActorID      string
	At           time.Time
}
