// Package requests runs the member intake workflow: submission, review queue,
// and promotion of approved requests into cases.
package requests

import (
	"context"
	"strings"
	"time"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/internal/service/cases"
	"github.com/aimd54/rocase/pkg/logger"
)

// CaseOpener opens a case inside a single transaction.
type CaseOpener interface {
	Open(ctx context.Context, actor auth.Actor, draft cases.Draft, resolve cases.PlayerResolver, after cases.AfterOpen) (*models.Case, error)
}

// Service handles case request operations.
type Service struct {
	store *repository.Store
	cases CaseOpener
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates a new case request service.
func NewService(store *repository.Store, opener CaseOpener, log *logger.Logger) *Service {
	return &Service{store: store, cases: opener, log: log, now: time.Now}
}

// SubmitInput holds a member's case request.
type SubmitInput struct {
	SuspectRobloxID           int64      `json:"suspect_roblox_id"`
	SuspectRobloxUsername     string     `json:"suspect_roblox_username"`
	ComplainantRobloxID       *int64     `json:"complainant_roblox_id"`
	ComplainantRobloxUsername *string    `json:"complainant_roblox_username"`
	CrimeType                 string     `json:"crime_type"`
	Description               string     `json:"description"`
	Location                  *string    `json:"location"`
	IncidentDate              *time.Time `json:"incident_date"`
	EvidenceURLs              []string   `json:"evidence_urls"`
}

// Submit stores a new pending request attributed to actor.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitInput) (*models.CaseRequest, error) {
	if err := auth.Require(actor, auth.OpRequestsCreate); err != nil {
		return nil, err
	}

	if in.SuspectRobloxID <= 0 {
		return nil, apperr.Invalid("suspect_roblox_id is required")
	}
	if strings.TrimSpace(in.SuspectRobloxUsername) == "" {
		return nil, apperr.Invalid("suspect_roblox_username is required")
	}
	if strings.TrimSpace(in.CrimeType) == "" {
		return nil, apperr.Invalid("crime_type is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Invalid("description is required")
	}

	urls := make([]string, 0, len(in.EvidenceURLs))
	for _, u := range in.EvidenceURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	encoded, err := models.EncodeEvidenceURLs(urls)
	if err != nil {
		return nil, apperr.Invalid("evidence_urls: %v", err)
	}

	req := &models.CaseRequest{
		Status:                    models.CaseRequestPending,
		SuspectRobloxID:           in.SuspectRobloxID,
		SuspectRobloxUsername:     strings.TrimSpace(in.SuspectRobloxUsername),
		ComplainantRobloxID:       in.ComplainantRobloxID,
		ComplainantRobloxUsername: trimmed(in.ComplainantRobloxUsername),
		CrimeType:                 strings.TrimSpace(in.CrimeType),
		Description:               in.Description,
		Location:                  trimmed(in.Location),
		IncidentDate:              in.IncidentDate,
		EvidenceURLs:              encoded,
		RequesterID:               actor.ID,
		RequesterName:             actor.Name,
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if err := tx.Requests.Create(ctx, req); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionCreateCaseRequest,
			EntityType: models.EntityCaseRequest,
			EntityID:   req.ID,
			Details:    map[string]any{"suspectRobloxUsername": req.SuspectRobloxUsername, "crimeType": req.CrimeType},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCaseRequest("submitted")
	s.log.Info().
		Uint("request_id", req.ID).
		Uint("requester_id", actor.ID).
		Int64("suspect_roblox_id", req.SuspectRobloxID).
		Msg("Case request submitted")
	return req, nil
}

// ApproveResult is the outcome of an approval.
type ApproveResult struct {
	Request  *models.CaseRequest `json:"request"`
	Case     *models.Case        `json:"case"`
	Evidence []models.Evidence   `json:"evidence"`
}

// Approve promotes a pending request into a new case with one link evidence
// record per submitted URL. Everything commits together or not at all.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, id uint, notes *string) (*ApproveResult, error) {
	if err := auth.Require(actor, auth.OpRequestsReview); err != nil {
		return nil, err
	}

	// Checked before allocating a case number; re-checked under lock below.
	req, err := s.pending(ctx, s.store, id, false)
	if err != nil {
		return nil, err
	}

	urls, parseErr := req.DecodeEvidenceURLs()
	if parseErr != nil {
		s.log.Warn().Err(parseErr).Uint("request_id", id).Msg("Stored evidence list is malformed, approving without it")
	}

	complainant := models.UnspecifiedComplainant
	if req.ComplainantRobloxUsername != nil && strings.TrimSpace(*req.ComplainantRobloxUsername) != "" {
		complainant = *req.ComplainantRobloxUsername
	}

	draft := cases.Draft{
		AccusedPlayerName: req.SuspectRobloxUsername,
		ComplainantName:   complainant,
		CrimeType:         req.CrimeType,
		Description:       req.Description,
		Severity:          models.SeverityMedium,
		Source:            metrics.SourceRequest,
	}

	resolve := func(ctx context.Context, tx *repository.Store) (*models.Player, error) {
		return tx.Players.Upsert(ctx, req.SuspectRobloxID, req.SuspectRobloxUsername)
	}

	result := &ApproveResult{}
	c, err := s.cases.Open(ctx, actor, draft, resolve, func(ctx context.Context, tx *repository.Store, c *models.Case) error {
		locked, err := s.pending(ctx, tx, id, true)
		if err != nil {
			return err
		}

		reviewedAt := s.now().UTC()
		caseID := c.ID
		ok, err := tx.Requests.MarkReviewed(ctx, id, repository.Review{
			Status:         models.CaseRequestApproved,
			ReviewerID:     actor.ID,
			ReviewerName:   actor.Name,
			Notes:          trimmed(notes),
			ReviewedAt:     reviewedAt,
			ApprovedCaseID: &caseID,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("case request %d was already reviewed", id)
		}

		for _, u := range urls {
			e := models.Evidence{
				CaseID:         c.ID,
				Type:           models.EvidenceLink,
				URL:            u,
				UploadedByID:   actor.ID,
				UploadedByName: actor.Name,
			}
			if err := tx.Evidence.Create(ctx, &e); err != nil {
				return err
			}
			result.Evidence = append(result.Evidence, e)
		}

		details := map[string]any{"caseId": c.ID, "reviewNotes": trimmed(notes)}
		if parseErr != nil {
			details["evidenceParseError"] = parseErr.Error()
		}
		if err := audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionApproveCaseRequest,
			EntityType: models.EntityCaseRequest,
			EntityID:   id,
			Details:    details,
		}); err != nil {
			return err
		}

		locked.Status = models.CaseRequestApproved
		locked.ReviewerID = &actor.ID
		locked.ReviewerName = &actor.Name
		locked.ReviewNotes = trimmed(notes)
		locked.ReviewedAt = &reviewedAt
		locked.ApprovedCaseID = &caseID
		result.Request = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Case = c

	metrics.RecordCaseRequest("approved")
	s.log.Info().
		Uint("request_id", id).
		Uint("case_id", c.ID).
		Str("case_number", c.CaseNumber).
		Int("evidence", len(result.Evidence)).
		Uint("actor_id", actor.ID).
		Msg("Case request approved")
	return result, nil
}

// Reject closes a pending request with a mandatory reason.
func (s *Service) Reject(ctx context.Context, actor auth.Actor, id uint, notes string) (*models.CaseRequest, error) {
	if err := auth.Require(actor, auth.OpRequestsReview); err != nil {
		return nil, err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, apperr.Invalid("review notes are required to reject a request")
	}

	var rejected *models.CaseRequest
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		req, err := s.pending(ctx, tx, id, true)
		if err != nil {
			return err
		}

		reviewedAt := s.now().UTC()
		ok, err := tx.Requests.MarkReviewed(ctx, id, repository.Review{
			Status:       models.CaseRequestRejected,
			ReviewerID:   actor.ID,
			ReviewerName: actor.Name,
			Notes:        &notes,
			ReviewedAt:   reviewedAt,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("case request %d was already reviewed", id)
		}

		if err := audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionRejectCaseRequest,
			EntityType: models.EntityCaseRequest,
			EntityID:   id,
			Details:    map[string]any{"reviewNotes": notes},
		}); err != nil {
			return err
		}

		req.Status = models.CaseRequestRejected
		req.ReviewerID = &actor.ID
		req.ReviewerName = &actor.Name
		req.ReviewNotes = &notes
		req.ReviewedAt = &reviewedAt
		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCaseRequest("rejected")
	s.log.Info().Uint("request_id", id).Uint("actor_id", actor.ID).Msg("Case request rejected")
	return rejected, nil
}

// List returns all requests, or those in status when it is set.
func (s *Service) List(ctx context.Context, actor auth.Actor, status models.CaseRequestStatus) ([]models.CaseRequest, error) {
	if err := auth.Require(actor, auth.OpRequestsList); err != nil {
		return nil, err
	}
	switch status {
	case "", models.CaseRequestPending, models.CaseRequestApproved, models.CaseRequestRejected:
	default:
		return nil, apperr.Invalid("unknown status %q", status)
	}
	return s.store.Requests.List(ctx, status)
}

// ListPending returns the review queue.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor) ([]models.CaseRequest, error) {
	return s.List(ctx, actor, models.CaseRequestPending)
}

// ListMine returns the requests submitted by actor.
func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]models.CaseRequest, error) {
	if err := auth.Require(actor, auth.OpRequestsRead); err != nil {
		return nil, err
	}
	return s.store.Requests.ListByRequester(ctx, actor.ID)
}

// GetByID returns one request.
func (s *Service) GetByID(ctx context.Context, actor auth.Actor, id uint) (*models.CaseRequest, error) {
	if err := auth.Require(actor, auth.OpRequestsRead); err != nil {
		return nil, err
	}
	req, err := s.store.Requests.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apperr.NotFound("case request %d not found", id)
	}
	return req, err
}

func (s *Service) pending(ctx context.Context, store *repository.Store, id uint, lock bool) (*models.CaseRequest, error) {
	var req *models.CaseRequest
	var err error
	if lock {
		req, err = store.Requests.GetForUpdate(ctx, id)
	} else {
		req, err = store.Requests.GetByID(ctx, id)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("case request %d not found", id)
		}
		return nil, err
	}
	if !req.IsPending() {
		return nil, apperr.Conflict("case request %d was already %s", id, req.Status)
	}
	return req, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
