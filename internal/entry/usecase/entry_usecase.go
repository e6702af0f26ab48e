package usecase

import (
	"context"
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/crypto"
	"github.com/allisson/entrypass/internal/database"
	"github.com/allisson/entrypass/internal/entry/domain"
	"github.com/allisson/entrypass/internal/payload"
	"github.com/allisson/entrypass/internal/token"
	"github.com/allisson/entrypass/internal/totp"
)

// entryUseCase implements the EntryUseCase interface.
type entryUseCase struct {
	txManager    database.TxManager
	eventRepo    EventRepository
	ticketRepo   TicketRepository
	keeper       KeyKeeper
	masterSecret []byte
	// skewSteps is how many rotation steps on each side of the current one a
	// presented code may fall into and still verify.
	skewSteps int
	nowFn     func() time.Time
}

// CreateEvent creates a new event, deriving and encrypting an event-level
// rotation key when requested.
func (u *entryUseCase) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrEventNameRequired
	}

	event := &domain.Event{
		ID:       uuid.Must(uuid.NewV7()),
		Name:     input.Name,
		StartsAt: input.StartsAt.UTC(),
	}

	if input.Rotating {
		eventKey, err := u.deriveAndSeal(ctx, event.ID, crypto.EventKeyInfo)
		if err != nil {
			return nil, err
		}
		event.EncryptedEventKey = eventKey
	}

	if err := u.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// GetEvent retrieves an event by ID.
func (u *entryUseCase) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return u.eventRepo.GetByID(ctx, id)
}

// IssueTicket creates a ticket for an event and encodes its secure token.
func (u *entryUseCase) IssueTicket(ctx context.Context, input IssueTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Barcode) == "" {
		return nil, domain.ErrBarcodeRequired
	}

	event, err := u.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:       uuid.Must(uuid.NewV7()),
		EventID:  event.ID,
		Section:  input.Section,
		RowLabel: input.RowLabel,
		Seat:     input.Seat,
		Barcode:  input.Barcode,
	}

	segment := token.SegmentBarcode
	var customerKey, eventKey []byte

	if input.Rotating {
		segment = token.SegmentRotating

		customerKey, err = crypto.DeriveKey(u.masterSecret, ticket.ID[:], crypto.CustomerKeyInfo)
		if err != nil {
			return nil, err
		}
		ticket.EncryptedCustomerKey, err = u.keeper.Encrypt(ctx, customerKey)
		if err != nil {
			return nil, err
		}

		if event.HasEventKey() {
			eventKey, err = u.keeper.Decrypt(ctx, event.EncryptedEventKey)
			if err != nil {
				return nil, err
			}
		}
	}

	ticket.Token, err = token.Encode(segment, ticket.Barcode, customerKey, eventKey)
	if err != nil {
		return nil, err
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return u.ticketRepo.Create(txCtx, ticket)
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// GetTicket retrieves a ticket by ID.
func (u *entryUseCase) GetTicket(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return u.ticketRepo.GetByID(ctx, id)
}

// ListTickets returns an event's tickets, newest first. The event must exist.
func (u *entryUseCase) ListTickets(ctx context.Context, eventID uuid.UUID, offset, limit int) ([]*domain.Ticket, error) {
	if _, err := u.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return u.ticketRepo.ListByEvent(ctx, eventID, offset, limit)
}

// VerifyPayload checks a presented rotating payload. The payload is either
// "token::customerCode" or "token::eventCode::customerCode::eventStepStart".
func (u *entryUseCase) VerifyPayload(ctx context.Context, value string) (*VerificationResult, error) {
	fields := payload.Split(value)
	if len(fields) != 2 && len(fields) != 4 {
		return nil, domain.ErrMalformedPayload
	}
	if fields[0] == "" {
		return nil, domain.ErrMalformedPayload
	}

	ticket, err := u.ticketRepo.GetByToken(ctx, fields[0])
	if err != nil {
		return nil, err
	}
	if !ticket.Rotating() {
		return nil, domain.ErrNotRotatingTicket
	}

	customerKey, err := u.keeper.Decrypt(ctx, ticket.EncryptedCustomerKey)
	if err != nil {
		return nil, err
	}

	now := u.nowFn()

	customerCode := fields[1]
	if len(fields) == 4 {
		customerCode = fields[2]
	}
	if !u.matchCode(customerKey, customerCode, now, nil) {
		return nil, domain.ErrVerificationFailed
	}

	if len(fields) == 4 {
		event, err := u.eventRepo.GetByID(ctx, ticket.EventID)
		if err != nil {
			return nil, err
		}
		if !event.HasEventKey() {
			return nil, domain.ErrVerificationFailed
		}
		eventKey, err := u.keeper.Decrypt(ctx, event.EncryptedEventKey)
		if err != nil {
			return nil, err
		}
		if !u.matchCode(eventKey, fields[1], now, &fields[3]) {
			return nil, domain.ErrVerificationFailed
		}
	}

	return &VerificationResult{Ticket: ticket, VerifiedAt: now}, nil
}

// matchCode generates codes for every accepted step around now and compares
// the presented one in constant time. When stepStart is non-nil the matching
// step's start must also equal that unix timestamp string.
func (u *entryUseCase) matchCode(key []byte, presented string, now time.Time, stepStart *string) bool {
	matched := false
	for offset := -u.skewSteps; offset <= u.skewSteps; offset++ {
		at := now.Add(time.Duration(offset) * totp.StepSeconds * time.Second)
		code, err := totp.Generate(key, at)
		if err != nil {
			return false
		}
		ok := subtle.ConstantTimeCompare([]byte(code.Value), []byte(presented)) == 1
		if ok && stepStart != nil {
			ok = *stepStart == strconv.FormatInt(code.StepStart.Unix(), 10)
		}
		// No early exit, comparison time stays independent of the offset that
		// matched.
		matched = matched || ok
	}
	return matched
}

// CurrentTime returns the server time used for client clock synchronization.
func (u *entryUseCase) CurrentTime() time.Time {
	return u.nowFn().UTC()
}

// deriveAndSeal derives a key from the master secret and encrypts it at rest.
func (u *entryUseCase) deriveAndSeal(ctx context.Context, salt uuid.UUID, info string) ([]byte, error) {
	key, err := crypto.DeriveKey(u.masterSecret, salt[:], info)
	if err != nil {
		return nil, err
	}
	return u.keeper.Encrypt(ctx, key)
}

// NewEntryUseCase creates a new entry use case instance with the provided
// dependencies.
func NewEntryUseCase(
	txManager database.TxManager,
	eventRepo EventRepository,
	ticketRepo TicketRepository,
	keeper KeyKeeper,
	masterSecret []byte,
	skewSteps int,
) EntryUseCase {
	return &entryUseCase{
		txManager:    txManager,
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		keeper:       keeper,
		masterSecret: masterSecret,
		skewSteps:    skewSteps,
		nowFn:        time.Now,
	}
}
