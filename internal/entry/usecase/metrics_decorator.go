package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/entry/domain"
	"github.com/allisson/entrypass/internal/metrics"
)

// entryUseCaseWithMetrics decorates EntryUseCase with metrics instrumentation.
type entryUseCaseWithMetrics struct {
	next    EntryUseCase
	metrics metrics.BusinessMetrics
}

// NewEntryUseCaseWithMetrics wraps an EntryUseCase with metrics recording.
func NewEntryUseCaseWithMetrics(useCase EntryUseCase, m metrics.BusinessMetrics) EntryUseCase {
	return &entryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *entryUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "entry", operation, status)
	e.metrics.RecordDuration(ctx, "entry", operation, time.Since(start), status)
}

// CreateEvent records metrics for event creation.
func (e *entryUseCaseWithMetrics) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	start := time.Now()
	event, err := e.next.CreateEvent(ctx, input)
	e.record(ctx, "event_create", start, err)
	return event, err
}

// GetEvent records metrics for event retrieval.
func (e *entryUseCaseWithMetrics) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	start := time.Now()
	event, err := e.next.GetEvent(ctx, id)
	e.record(ctx, "event_get", start, err)
	return event, err
}

// IssueTicket records metrics for ticket issuance.
func (e *entryUseCaseWithMetrics) IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error) {
	start := time.Now()
	ticket, err := e.next.IssueTicket(ctx, input)
	e.record(ctx, "ticket_issue", start, err)
	return ticket, err
}

// GetTicket records metrics for ticket retrieval.
func (e *entryUseCaseWithMetrics) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	start := time.Now()
	ticket, err := e.next.GetTicket(ctx, id)
	e.record(ctx, "ticket_get", start, err)
	return ticket, err
}

// ListTickets records metrics for ticket listing.
func (e *entryUseCaseWithMetrics) ListTickets(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*domain.Ticket, error) {
	start := time.Now()
	tickets, err := e.next.ListTickets(ctx, eventID, offset, limit)
	e.record(ctx, "ticket_list", start, err)
	return tickets, err
}

// VerifyPayload records metrics for payload verification.
func (e *entryUseCaseWithMetrics) VerifyPayload(ctx context.Context, value string) (*VerificationResult, error) {
	start := time.Now()
	result, err := e.next.VerifyPayload(ctx, value)
	e.record(ctx, "payload_verify", start, err)
	return result, err
}

// CurrentTime passes through without instrumentation.
func (e *entryUseCaseWithMetrics) CurrentTime() time.Time {
	return e.next.CurrentTime()
}
