package repository

import (
	"context"
	"fmt"

	"github.com/aimd54/rocase/internal/models"
)

// NoteRepository handles note-related database operations.
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create attaches a note to a case.
func (r *NoteRepository) Create(ctx context.Context, n *models.Note) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create note for case %d: %w", n.CaseID, err)
	}
	return nil
}

// GetByID retrieves a note by ID.
func (r *NoteRepository) GetByID(ctx context.Context, id uint) (*models.Note, error) {
	var n models.Note
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get note by id %d: %w", id, err)
	}
	return &n, nil
}

// ListByCase retrieves the notes of a case, newest first.
func (r *NoteRepository) ListByCase(ctx context.Context, caseID uint) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes of case %d: %w", caseID, err)
	}
	return notes, nil
}

// UpdateContent replaces the content of a note. It reports false when the note is missing.
func (r *NoteRepository) UpdateContent(ctx context.Context, id uint, content string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update note %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Delete removes a note. It reports false when nothing was deleted.
func (r *NoteRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Note{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete note %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}
