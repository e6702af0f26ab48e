package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/entrypass/internal/database"
	"github.com/allisson/entrypass/internal/entry/domain"

	apperrors "github.com/allisson/entrypass/internal/errors"
)

// MySQLEventRepository handles event persistence for MySQL
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQLEventRepository
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{
		db: db,
	}
}

// Create inserts a new event
func (r *MySQLEventRepository) Create(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO events (id, name, starts_at, encrypted_event_key, created_at, updated_at)
			  VALUES (?, ?, ?, ?, NOW(), NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, event.Name, event.StartsAt, event.EncryptedEventKey)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrEventAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create event")
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *MySQLEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, starts_at, encrypted_event_key, created_at, updated_at
			  FROM events WHERE id = ?`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	var idBytes []byte
	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(
		&idBytes, &event.Name, &event.StartsAt, &event.EncryptedEventKey,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get event by id")
	}

	// Convert bytes back to UUID
	if err := event.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &event, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
