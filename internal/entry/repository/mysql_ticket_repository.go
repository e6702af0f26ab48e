package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/database"
	"github.com/allisson/entrypass/internal/entry/domain"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

// MySQLTicketRepository handles ticket persistence for MySQL
type MySQLTicketRepository struct {
	db *sql.DB
}

// NewMySQLTicketRepository creates a new MySQLTicketRepository
func NewMySQLTicketRepository(db *sql.DB) *MySQLTicketRepository {
	return &MySQLTicketRepository{
		db: db,
	}
}

// Create inserts a new ticket
func (r *MySQLTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tickets (id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := ticket.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	eventIDBytes, err := ticket.EventID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(
		ctx, query, idBytes, eventIDBytes, ticket.Section, ticket.RowLabel,
		ticket.Seat, ticket.Barcode, ticket.EncryptedCustomerKey, ticket.Token,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrTicketAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create ticket")
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *MySQLTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at
			  FROM tickets WHERE id = ?`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	return r.getOne(ctx, query, uuidBytes)
}

// GetByToken retrieves a ticket by its opaque token string
func (r *MySQLTicketRepository) GetByToken(ctx context.Context, tokenString string) (*domain.Ticket, error) {
	query := `SELECT id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at
			  FROM tickets WHERE token = ?`

	return r.getOne(ctx, query, tokenString)
}

// ListByEvent retrieves tickets for an event ordered by creation time
// descending (newest first) with pagination. Returns an empty slice when the
// event has no tickets in the window.
func (r *MySQLTicketRepository) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	offset, limit int,
) ([]*domain.Ticket, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at
			  FROM tickets WHERE event_id = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	// Convert UUID to bytes for MySQL BINARY(16)
	eventIDBytes, err := eventID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	rows, err := querier.QueryContext(ctx, query, eventIDBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tickets")
	}
	defer func() {
		_ = rows.Close()
	}()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		var ticket domain.Ticket
		var idBytes, rowEventIDBytes []byte
		err := rows.Scan(
			&idBytes, &rowEventIDBytes, &ticket.Section, &ticket.RowLabel, &ticket.Seat,
			&ticket.Barcode, &ticket.EncryptedCustomerKey, &ticket.Token,
			&ticket.CreatedAt, &ticket.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan ticket")
		}

		// Convert bytes back to UUIDs
		if err := ticket.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		if err := ticket.EventID.UnmarshalBinary(rowEventIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tickets")
	}

	return tickets, nil
}

func (r *MySQLTicketRepository) getOne(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	querier := database.GetTx(ctx, r.db)

	var idBytes, eventIDBytes []byte
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes, &eventIDBytes, &ticket.Section, &ticket.RowLabel, &ticket.Seat,
		&ticket.Barcode, &ticket.EncryptedCustomerKey, &ticket.Token,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ticket")
	}

	// Convert bytes back to UUIDs
	if err := ticket.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	if err := ticket.EventID.UnmarshalBinary(eventIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &ticket, nil
}
