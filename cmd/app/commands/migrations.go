package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/entrypass/internal/app"
	"github.com/allisson/entrypass/internal/config"
)

// RunMigrations applies all pending migrations for the configured driver.
// The migration files live under migrations/postgresql and migrations/mysql;
// an up-to-date database is not an error.
func RunMigrations() error {
	cfg := config.Load()

	// Container is only needed for its logger here
	container := app.NewContainer(cfg)
	logger := container.Logger()

	migrationsPath := "file://migrations/postgresql"
	if cfg.DBDriver == "mysql" {
		migrationsPath = "file://migrations/mysql"
	}

	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
		slog.String("path", migrationsPath),
	)

	m, err := migrate.New(migrationsPath, cfg.DBConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
