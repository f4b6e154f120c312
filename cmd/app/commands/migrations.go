package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/vaultlite/internal/app"
	"github.com/allisson/vaultlite/internal/config"
	"github.com/allisson/vaultlite/internal/database"
)

// RunMigrations brings the configured database up to the current schema.
//
// The embedded libsql database uses the built-in migration runner; server
// databases go through golang-migrate with the SQL files under migrations/.
// Returns nil when there is nothing to apply.
func RunMigrations(ctx context.Context) error {
	cfg := config.Load()

	// Create container just for logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
	)

	if cfg.DBDriver == database.DriverLibSQL {
		db, err := database.Connect(database.Config{
			Driver:           cfg.DBDriver,
			ConnectionString: cfg.DBConnectionString,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		logger.Info("migrations completed successfully")
		return nil
	}

	migrationsPath := "file://migrations/postgresql"
	if cfg.DBDriver == database.DriverMySQL {
		migrationsPath = "file://migrations/mysql"
	}

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
