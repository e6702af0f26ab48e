// Package repository provides data persistence implementations for secure
// entry entities.
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

// PostgreSQLEventRepository handles event persistence for PostgreSQL
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQLEventRepository
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{
		db: db,
	}
}

// Create inserts a new event
func (r *PostgreSQLEventRepository) Create(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO events (id, name, starts_at, encrypted_event_key, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := querier.ExecContext(
		ctx, query, event.ID, event.Name, event.StartsAt, event.EncryptedEventKey,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrEventAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create event")
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *PostgreSQLEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, starts_at, encrypted_event_key, created_at, updated_at
			  FROM events WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.StartsAt, &event.EncryptedEventKey,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get event by id")
	}

	return &event, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" (SQLSTATE 23505)
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "23505")
}
