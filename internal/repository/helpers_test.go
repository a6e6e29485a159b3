package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/rocase/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(sqlite.Open(":memory:"), gormlogger.Silent)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// One connection keeps the in-memory schema alive
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *DB, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		OpenID:       "open-" + name,
		Name:         name,
		Role:         role,
		LastSignedIn: time.Now().UTC(),
	}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// createTestPlayer creates a test player in the database.
func createTestPlayer(t *testing.T, db *DB, robloxID int64, username string) *models.Player {
	t.Helper()

	player, err := NewPlayerRepository(db).Upsert(context.Background(), robloxID, username)
	if err != nil {
		t.Fatalf("Failed to create test player: %v", err)
	}
	return player
}

// createTestCase creates an open case numbered RC-<year>-<seq>.
func createTestCase(t *testing.T, db *DB, number string, player *models.Player, creator *models.User) *models.Case {
	t.Helper()

	c := &models.Case{
		CaseNumber:        number,
		Status:            models.CaseStatusOpen,
		Severity:          models.SeverityMedium,
		Verdict:           models.VerdictPending,
		CrimeType:         "theft",
		Description:       "stole a car",
		AccusedPlayerID:   player.ID,
		AccusedPlayerName: player.RobloxUsername,
		ComplainantName:   "Alice",
		CreatedByID:       creator.ID,
	}
	if err := NewCaseRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("Failed to create test case: %v", err)
	}
	return c
}
