package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/aimd54/rocase/internal/config"
	"github.com/aimd54/rocase/migrations"
	"github.com/aimd54/rocase/pkg/logger"
)

// Migrate brings the schema up to date.
// PostgreSQL deployments apply the embedded SQL files; everything else uses GORM AutoMigrate.
func Migrate(db *DB, cfg *config.DatabaseConfig, log *logger.Logger) error {
	if cfg.Migrations != config.MigrationsSQL {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Info().Str("mode", config.MigrationsAuto).Msg("Schema migrated")
		return nil
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.Postgres.URL())
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrator")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Info().Str("mode", config.MigrationsSQL).Uint("version", version).Bool("dirty", dirty).Msg("Schema migrated")
	return nil
}
