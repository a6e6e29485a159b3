package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/aimd54/rocase/internal/models"
)

// CaseRepository handles case-related database operations.
type CaseRepository struct {
	db *DB
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create inserts a case. A taken case number yields gorm.ErrDuplicatedKey.
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create case %s: %w", c.CaseNumber, err)
	}
	return nil
}

// GetByID retrieves a case by ID.
func (r *CaseRepository) GetByID(ctx context.Context, id uint) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get case by id %d: %w", id, err)
	}
	return &c, nil
}

// GetForUpdate retrieves a case and locks its row until the enclosing transaction ends.
// SQLite ignores the lock; its single writer serializes transactions instead.
func (r *CaseRepository) GetForUpdate(ctx context.Context, id uint) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
		return nil, fmt.Errorf("failed to lock case %d: %w", id, err)
	}
	return &c, nil
}

// GetByCaseNumber retrieves a case by its human-readable number.
func (r *CaseRepository) GetByCaseNumber(ctx context.Context, caseNumber string) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).Where("case_number = ?", strings.ToUpper(caseNumber)).First(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to get case by number %s: %w", caseNumber, err)
	}
	return &c, nil
}

// List retrieves cases newest first, optionally filtered by status.
func (r *CaseRepository) List(ctx context.Context, status models.CaseStatus) ([]models.Case, error) {
	query := r.db.WithContext(ctx).Model(&models.Case{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var cases []models.Case
	if err := query.Order("created_at DESC").Order("id DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// ListByPlayer retrieves the cases against a player, newest first.
func (r *CaseRepository) ListByPlayer(ctx context.Context, playerID uint) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.WithContext(ctx).
		Where("accused_player_id = ?", playerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cases of player %d: %w", playerID, err)
	}
	return cases, nil
}

// Search matches query case-insensitively as a substring of the case number,
// accused name, complainant name or crime type.
func (r *CaseRepository) Search(ctx context.Context, query string) ([]models.Case, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var cases []models.Case
	err := r.db.WithContext(ctx).
		Where(`LOWER(case_number) LIKE ? ESCAPE '\'
			OR LOWER(accused_player_name) LIKE ? ESCAPE '\'
			OR LOWER(complainant_name) LIKE ? ESCAPE '\'
			OR LOWER(crime_type) LIKE ? ESCAPE '\'`, pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Order("id DESC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search cases: %w", err)
	}
	return cases, nil
}

// UpdateStatus moves a non-closed case to status.
// It reports false when the case does not exist or is already closed.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uint, status models.CaseStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ? AND status <> ?", id, models.CaseStatusClosed).
		Update("status", status)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update status of case %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Close records the verdict of a case that is not yet closed.
// It reports false when another caller closed it first.
func (r *CaseRepository) Close(ctx context.Context, id uint, verdict models.Verdict, punishment *string, closedByID uint, closedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ? AND status <> ?", id, models.CaseStatusClosed).
		Updates(map[string]any{
			"status":       models.CaseStatusClosed,
			"verdict":      verdict,
			"punishment":   punishment,
			"closed_by_id": closedByID,
			"closed_at":    closedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to close case %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MaxSequence returns the highest sequence used by case numbers with the given year prefix.
func (r *CaseRepository) MaxSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("%s-%d-", models.CaseNumberPrefix, year)

	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("case_number LIKE ?", prefix+"%").
		Order("case_number DESC").
		Limit(1).
		Pluck("case_number", &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read highest case number for %d: %w", year, err)
	}
	if len(numbers) == 0 {
		return 0, nil
	}

	var seq int
	if _, err := fmt.Sscanf(strings.TrimPrefix(numbers[0], prefix), "%d", &seq); err != nil {
		return 0, fmt.Errorf("failed to parse case number %s: %w", numbers[0], err)
	}
	return seq, nil
}

// StatusCount is one row of a grouped status count.
type StatusCount struct {
	Status string
	Count  int64
}

// CountByStatus returns the number of cases per status.
func (r *CaseRepository) CountByStatus(ctx context.Context) (map[models.CaseStatus]int64, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Case{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count cases by status: %w", err)
	}

	counts := make(map[models.CaseStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.CaseStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
