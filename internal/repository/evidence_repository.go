package repository

import (
	"context"
	"fmt"

	"github.com/aimd54/rocase/internal/models"
)

// EvidenceRepository handles evidence-related database operations.
type EvidenceRepository struct {
	db *DB
}

// NewEvidenceRepository creates a new evidence repository.
func NewEvidenceRepository(db *DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Create attaches evidence to a case.
func (r *EvidenceRepository) Create(ctx context.Context, e *models.Evidence) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create evidence for case %d: %w", e.CaseID, err)
	}
	return nil
}

// GetByID retrieves evidence by ID.
func (r *EvidenceRepository) GetByID(ctx context.Context, id uint) (*models.Evidence, error) {
	var e models.Evidence
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get evidence by id %d: %w", id, err)
	}
	return &e, nil
}

// ListByCase retrieves the evidence of a case, newest first.
func (r *EvidenceRepository) ListByCase(ctx context.Context, caseID uint) ([]models.Evidence, error) {
	var items []models.Evidence
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence of case %d: %w", caseID, err)
	}
	return items, nil
}

// Delete removes evidence. It reports false when nothing was deleted.
func (r *EvidenceRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Evidence{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete evidence %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}
