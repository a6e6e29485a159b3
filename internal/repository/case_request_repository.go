package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/aimd54/rocase/internal/models"
)

// CaseRequestRepository handles case-request database operations.
type CaseRequestRepository struct {
	db *DB
}

// NewCaseRequestRepository creates a new case request repository.
func NewCaseRequestRepository(db *DB) *CaseRequestRepository {
	return &CaseRequestRepository{db: db}
}

// Create stores a new request.
func (r *CaseRequestRepository) Create(ctx context.Context, req *models.CaseRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create case request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID.
func (r *CaseRequestRepository) GetByID(ctx context.Context, id uint) (*models.CaseRequest, error) {
	var req models.CaseRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get case request by id %d: %w", id, err)
	}
	return &req, nil
}

// GetForUpdate retrieves a request and locks its row until the enclosing transaction ends.
func (r *CaseRequestRepository) GetForUpdate(ctx context.Context, id uint) (*models.CaseRequest, error) {
	var req models.CaseRequest
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
		return nil, fmt.Errorf("failed to lock case request %d: %w", id, err)
	}
	return &req, nil
}

// List retrieves requests newest first, optionally filtered by status.
func (r *CaseRequestRepository) List(ctx context.Context, status models.CaseRequestStatus) ([]models.CaseRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.CaseRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reqs []models.CaseRequest
	if err := query.Order("created_at DESC").Order("id DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list case requests: %w", err)
	}
	return reqs, nil
}

// ListByRequester retrieves the requests submitted by one user, newest first.
func (r *CaseRequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.CaseRequest, error) {
	var reqs []models.CaseRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list case requests of user %d: %w", requesterID, err)
	}
	return reqs, nil
}

// ListPendingBefore retrieves pending requests created before cutoff, oldest first.
func (r *CaseRequestRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.CaseRequest, error) {
	var reqs []models.CaseRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.CaseRequestPending, cutoff).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale case requests: %w", err)
	}
	return reqs, nil
}

// Review is the outcome written when a request leaves pending.
type Review struct {
	Status         models.CaseRequestStatus
	ReviewerID     uint
	ReviewerName   string
	Notes          *string
	ReviewedAt     time.Time
	ApprovedCaseID *uint
}

// MarkReviewed moves a pending request to its terminal status.
// It reports false when the request is missing or no longer pending.
func (r *CaseRequestRepository) MarkReviewed(ctx context.Context, id uint, review Review) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.CaseRequest{}).
		Where("id = ? AND status = ?", id, models.CaseRequestPending).
		Updates(map[string]any{
			"status":           review.Status,
			"reviewer_id":      review.ReviewerID,
			"reviewer_name":    review.ReviewerName,
			"review_notes":     review.Notes,
			"reviewed_at":      review.ReviewedAt,
			"approved_case_id": review.ApprovedCaseID,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to review case request %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// CountByStatus returns the number of requests per status.
func (r *CaseRequestRepository) CountByStatus(ctx context.Context) (map[models.CaseRequestStatus]int64, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.CaseRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count case requests by status: %w", err)
	}

	counts := make(map[models.CaseRequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.CaseRequestStatus(row.Status)] = row.Count
	}
	return counts, nil
}
