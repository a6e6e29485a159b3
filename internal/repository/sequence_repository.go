package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aimd54/rocase/internal/models"
)

const seedAttempts = 3

// SequenceRepository allocates case-number sequences per calendar year.
type SequenceRepository struct {
	db *DB
}

// NewSequenceRepository creates a new sequence repository.
func NewSequenceRepository(db *DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next reserves and returns the next sequence value for year.
// Each reservation commits on its own, so a value is never handed out twice
// even if the case that was meant to use it is never written.
// Must not be called while a transaction on the same connection is open.
func (r *SequenceRepository) Next(ctx context.Context, year int) (int, error) {
	var lastErr error
	for attempt := 0; attempt < seedAttempts; attempt++ {
		next, err := r.next(ctx, year)
		if err == nil {
			return next, nil
		}
		// Two callers seeding the same year at once: the loser retries the increment.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, err
		}
		lastErr = err
	}
	return 0, fmt.Errorf("failed to allocate case sequence for %d: %w", year, lastErr)
}

func (r *SequenceRepository) next(ctx context.Context, year int) (int, error) {
	var next int
	err := r.db.Transaction(ctx, func(tx *DB) error {
		result := tx.Model(&models.CaseSequence{}).
			Where("year = ?", year).
			Updates(map[string]any{
				"last_value": gorm.Expr("last_value + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to increment case sequence for %d: %w", year, result.Error)
		}

		if result.RowsAffected == 0 {
			highest, err := NewCaseRepository(tx).MaxSequence(ctx, year)
			if err != nil {
				return err
			}
			seq := models.CaseSequence{Year: year, LastValue: highest + 1}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to seed case sequence for %d: %w", year, err)
			}
			next = seq.LastValue
			return nil
		}

		var seq models.CaseSequence
		if err := tx.Where("year = ?", year).First(&seq).Error; err != nil {
			return fmt.Errorf("failed to read case sequence for %d: %w", year, err)
		}
		next = seq.LastValue
		return nil
	})
	return next, err
}
