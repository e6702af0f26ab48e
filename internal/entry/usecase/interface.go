// Package usecase implements business logic orchestration for secure entry
// credentials. Use cases coordinate key derivation, key-at-rest encryption,
// token encoding and rotating payload verification on top of the repositories.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/entry/domain"
)

// EventRepository defines the interface for event persistence operations.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

// TicketRepository defines the interface for ticket persistence operations.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	GetByToken(ctx context.Context, tokenString string) (*domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*domain.Ticket, error)
}

// KeyKeeper defines the interface for key-at-rest encryption.
type KeyKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// CreateEventInput holds the data needed to create an event.
type CreateEventInput struct {
	Name     string
	StartsAt time.Time
	// Rotating assigns the event an event-level rotation key.
	Rotating bool
}

// IssueTicketInput holds the data needed to issue a ticket.
type IssueTicketInput struct {
	EventID  uuid.UUID
	Section  string
	RowLabel string
	Seat     string
	Barcode  string
	// Rotating issues the ticket as a rotating credential instead of a static
	// barcode.
	Rotating bool
}

// VerificationResult describes a successful rotating payload verification.
type VerificationResult struct {
	Ticket *domain.Ticket
	// VerifiedAt is the server time the payload was checked against.
	VerifiedAt time.Time
}

// EntryUseCase defines the interface for secure entry business logic.
type EntryUseCase interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	// IssueTicket creates a ticket and encodes its opaque secure token. For
	// rotating tickets the token carries the plaintext keys the holder's
	// device needs to generate codes; only encrypted copies are stored.
	IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	// ListTickets returns an event's tickets, newest first. The returned
	// tickets never include plaintext key material.
	ListTickets(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*domain.Ticket, error)
	// VerifyPayload checks a presented rotating payload against the ticket's
	// keys within the configured clock skew tolerance.
	VerifyPayload(ctx context.Context, value string) (*VerificationResult, error)
	// CurrentTime returns the server time clients synchronize against.
	CurrentTime() time.Time
}
