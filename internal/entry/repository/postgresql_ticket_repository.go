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

// PostgreSQLTicketRepository handles ticket persistence for PostgreSQL
type PostgreSQLTicketRepository struct {
	db *sql.DB
}

// NewPostgreSQLTicketRepository creates a new PostgreSQLTicketRepository
func NewPostgreSQLTicketRepository(db *sql.DB) *PostgreSQLTicketRepository {
	return &PostgreSQLTicketRepository{
		db: db,
	}
}

// Create inserts a new ticket
func (r *PostgreSQLTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tickets (id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx, query, ticket.ID, ticket.EventID, ticket.Section, ticket.RowLabel,
		ticket.Seat, ticket.Barcode, ticket.EncryptedCustomerKey, ticket.Token,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrTicketAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create ticket")
	}
	return nil
}

// GetByID retrieves a ticket by ID
func (r *PostgreSQLTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at
			  FROM tickets WHERE id = $1`

	return r.getOne(ctx, query, id)
}

// GetByToken retrieves a ticket by its opaque token string
func (r *PostgreSQLTicketRepository) GetByToken(ctx context.Context, tokenString string) (*domain.Ticket, error) {
	query := `SELECT id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at
			  FROM tickets WHERE token = $1`

	return r.getOne(ctx, query, tokenString)
}

// ListByEvent retrieves tickets for an event ordered by creation time
// descending (newest first) with pagination. Returns an empty slice when the
// event has no tickets in the window.
func (r *PostgreSQLTicketRepository) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	offset, limit int,
) ([]*domain.Ticket, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, event_id, section, row_label, seat, barcode,
			  encrypted_customer_key, token, created_at, updated_at
			  FROM tickets WHERE event_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tickets")
	}
	defer func() {
		_ = rows.Close()
	}()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		var ticket domain.Ticket
		err := rows.Scan(
			&ticket.ID, &ticket.EventID, &ticket.Section, &ticket.RowLabel, &ticket.Seat,
			&ticket.Barcode, &ticket.EncryptedCustomerKey, &ticket.Token,
			&ticket.CreatedAt, &ticket.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan ticket")
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tickets")
	}

	return tickets, nil
}

func (r *PostgreSQLTicketRepository) getOne(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	querier := database.GetTx(ctx, r.db)

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&ticket.ID, &ticket.EventID, &ticket.Section, &ticket.RowLabel, &ticket.Seat,
		&ticket.Barcode, &ticket.EncryptedCustomerKey, &ticket.Token,
		&ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ticket")
	}

	return &ticket, nil
}
