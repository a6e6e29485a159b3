// Package testdb opens throwaway in-memory databases for tests.
package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
)

// New returns a migrated in-memory SQLite database closed at test cleanup.
// The pool holds one connection so the in-memory schema survives between queries.
func New(t *testing.T) *repository.DB {
	t.Helper()

	db, err := repository.Open(sqlite.Open(":memory:"), gormlogger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewStore returns a Store over a fresh database.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(New(t))
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, store *repository.Store, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		OpenID:       "open-" + name,
		Name:         name,
		Role:         role,
		LoginMethod:  "discord",
		LastSignedIn: time.Now().UTC(),
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

// CreatePlayer inserts or refreshes a player.
func CreatePlayer(t *testing.T, store *repository.Store, robloxID int64, username string) *models.Player {
	t.Helper()

	player, err := store.Players.Upsert(context.Background(), robloxID, username)
	require.NoError(t, err)
	return player
}

// CreateCase inserts an open case numbered number against player.
func CreateCase(t *testing.T, store *repository.Store, number string, player *models.Player, creator *models.User) *models.Case {
	t.Helper()

	c := &models.Case{
		CaseNumber:        number,
		Status:            models.CaseStatusOpen,
		Severity:          models.SeverityMedium,
		Verdict:           models.VerdictPending,
		CrimeType:         "Griefing",
		Description:       "Test case",
		AccusedPlayerID:   player.ID,
		AccusedPlayerName: player.RobloxUsername,
		ComplainantName:   "Complainant",
		CreatedByID:       creator.ID,
	}
	require.NoError(t, store.Cases.Create(context.Background(), c))
	return c
}
