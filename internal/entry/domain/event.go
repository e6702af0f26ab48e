// Package domain defines the core secure entry domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/errors"
)

// Event represents an event tickets are issued for. Events with an event key
// add an event-level code and the rotation window boundary to every rotating
// payload, so the gate can verify against the event's own rotation schedule.
type Event struct {
	ID       uuid.UUID
	Name     string
	StartsAt time.Time
	// EncryptedEventKey is the event TOTP key, encrypted at rest by the key
	// keeper. Empty for events without event-level rotation.
	EncryptedEventKey []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasEventKey reports whether the event uses event-level rotation.
func (e *Event) HasEventKey() bool {
	return len(e.EncryptedEventKey) > 0
}

// Domain-specific errors for event operations.
var (
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "event not found")

	// ErrEventAlreadyExists indicates an event with the same name already exists.
	ErrEventAlreadyExists = errors.Wrap(errors.ErrConflict, "event already exists")

	// ErrEventNameRequired indicates the name field is required.
	ErrEventNameRequired = errors.Wrap(errors.ErrInvalidInput, "event name is required")
)
