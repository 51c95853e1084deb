package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("user not logged in")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid ID format")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrConflict           = errors.New("conflict")

	ErrInvalidIdempotencyKey = errors.New("Idempotency-Key must be a valid UUID")
	ErrIdempotencyInFlight   = errors.New("a request with this Idempotency-Key is already in progress")
)

// NotFoundError reports a missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       string
	// Field, when set, names the lookup key instead of the id.
	Field string
}

func (e *NotFoundError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("No %s with that %s", e.Resource, e.Field)
	}
	return fmt.Sprintf("No %s with id: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports a uniqueness violation surfaced at write time.
// It matches ErrConflict.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "resource already exists"
	}
	return fmt.Sprintf("%s is already in use", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
