// Package repository provides data access layer using GORM for database operations.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/rocase/internal/config"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/pkg/logger"
)

// DB holds the database connection.
type DB struct {
	*gorm.DB
}

// NewDB opens the configured relational store.
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.Postgres.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormLogLevel := gormlogger.Warn
	if log.GetLogger().GetLevel() == zerolog.DebugLevel {
		gormLogLevel = gormlogger.Info
	}

	db, err := Open(dialector, gormLogLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == config.DriverPostgres {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	} else {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	event := log.Info().Str("driver", cfg.Driver)
	if cfg.Driver == config.DriverPostgres {
		event = event.Str("host", cfg.Postgres.Host).Int("port", cfg.Postgres.Port).Str("database", cfg.Postgres.Database)
	} else {
		event = event.Str("path", cfg.SQLite.Path)
	}
	event.Msg("Connected to database")

	return db, nil
}

// Open wraps a GORM dialector with the settings every store relies on.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, level gormlogger.LogLevel) (*DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &DB{db}, nil
}

// AutoMigrate creates or updates tables for all models.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.CaseSequence{},
		&models.Case{},
		&models.Evidence{},
		&models.Note{},
		&models.AuditLog{},
		&models.CaseRequest{},
	)
}

// Transaction runs fn inside a database transaction bound to ctx.
// The transaction commits when fn returns nil and rolls back otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return db.WithContext(ctx).DB.Transaction(func(tx *gorm.DB) error {
		return fn(&DB{tx})
	})
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is healthy.
func (db *DB) Health() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// WithContext returns a session bound to ctx.
func (db *DB) WithContext(ctx context.Context) *DB {
	return &DB{db.DB.WithContext(ctx)}
}
