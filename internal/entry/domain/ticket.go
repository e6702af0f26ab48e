package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/errors"
)

// Ticket represents one issued secure entry credential. The opaque token is
// what the holder's device receives; the encrypted customer key is what the
// gate needs to verify the rotating payload the device presents.
type Ticket struct {
	ID       uuid.UUID
	EventID  uuid.UUID
	Section  string
	RowLabel string
	Seat     string
	// Barcode is the static (or fallback) barcode payload.
	Barcode string
	// EncryptedCustomerKey is the per-ticket TOTP key, encrypted at rest by
	// the key keeper. Empty for static-only tickets.
	EncryptedCustomerKey []byte
	// Token is the opaque secure token handed to the client.
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rotating reports whether the ticket was issued as a rotating credential.
func (t *Ticket) Rotating() bool {
	return len(t.EncryptedCustomerKey) > 0
}

// Domain-specific errors for ticket operations.
var (
	// ErrTicketNotFound indicates the requested ticket does not exist.
	ErrTicketNotFound = errors.Wrap(errors.ErrNotFound, "ticket not found")

	// ErrTicketAlreadyExists indicates a ticket with the same barcode already exists.
	ErrTicketAlreadyExists = errors.Wrap(errors.ErrConflict, "ticket already exists")

	// ErrMalformedPayload indicates a presented payload does not match the
	// composition grammar.
	ErrMalformedPayload = errors.Wrap(errors.ErrInvalidInput, "malformed rotating payload")

	// ErrVerificationFailed indicates the presented codes do not match any
	// accepted time step.
	ErrVerificationFailed = errors.Wrap(errors.ErrUnauthorized, "payload verification failed")

	// ErrNotRotatingTicket indicates a rotating payload was presented for a
	// static-only ticket.
	ErrNotRotatingTicket = errors.Wrap(errors.ErrInvalidInput, "ticket is not a rotating credential")

	// ErrBarcodeRequired indicates the barcode field is required.
	ErrBarcodeRequired = errors.Wrap(errors.ErrInvalidInput, "ticket barcode is required")
)
