package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/rocase/internal/models"
)

// PlayerRepository handles player-related database operations.
type PlayerRepository struct {
	db *DB
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Upsert inserts a player or refreshes the username of the existing record
// with the same Roblox user id. Counters are never touched.
func (r *PlayerRepository) Upsert(ctx context.Context, robloxUserID int64, username string) (*models.Player, error) {
	player := models.Player{RobloxUserID: robloxUserID, RobloxUsername: username}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "roblox_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"roblox_username", "updated_at"}),
	}).Create(&player).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player %d: %w", robloxUserID, err)
	}
	return r.GetByRobloxID(ctx, robloxUserID)
}

// GetByID retrieves a player by ID.
func (r *PlayerRepository) GetByID(ctx context.Context, id uint) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).First(&player, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get player by id %d: %w", id, err)
	}
	return &player, nil
}

// GetByRobloxID retrieves a player by Roblox user id.
func (r *PlayerRepository) GetByRobloxID(ctx context.Context, robloxUserID int64) (*models.Player, error) {
	var player models.Player
	if err := r.db.WithContext(ctx).Where("roblox_user_id = ?", robloxUserID).First(&player).Error; err != nil {
		return nil, fmt.Errorf("failed to get player by roblox id %d: %w", robloxUserID, err)
	}
	return &player, nil
}

// TopOffenders returns the players with the most cases.
func (r *PlayerRepository) TopOffenders(ctx context.Context, limit int) ([]models.Player, error) {
	var players []models.Player
	err := r.db.WithContext(ctx).
		Order("total_cases DESC").
		Order("id ASC").
		Limit(limit).
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top offenders: %w", err)
	}
	return players, nil
}

// IncrementCounter atomically adds one to a counter column.
func (r *PlayerRepository) IncrementCounter(ctx context.Context, id uint, column string) error {
	switch column {
	case models.CounterTotalCases, models.CounterConvictions, models.CounterAcquittals:
	default:
		return fmt.Errorf("unknown player counter %q", column)
	}

	result := r.db.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to increment %s of player %d: %w", column, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to increment %s of player %d: %w", column, id, gorm.ErrRecordNotFound)
	}
	return nil
}
