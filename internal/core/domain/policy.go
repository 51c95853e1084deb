package domain

import "fmt"

// Action names an operation guarded by the ownership policy.
type Action string

const (
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionReadPrivate Action = "read-private"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize allows an action when the identity is an admin or owns the
// resource. An identity without a subject never owns anything.
func Authorize(id Identity, action Action, ownerID string) Decision {
	switch {
	case id.IsAdmin():
		return Decision{Allowed: true, Reason: "admin"}
	case !id.IsZero() && id.SubjectID == ownerID:
		return Decision{Allowed: true, Reason: "owner"}
	}
	return Decision{Reason: fmt.Sprintf("%s requires ownership or the admin role", action)}
}

// Err converts a Deny into an error matching ErrForbidden.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
}
