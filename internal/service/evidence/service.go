// Package evidence attaches, uploads and removes case evidence.
package evidence

import (
	"context"
	"io"
	"strings"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/internal/storage"
	"github.com/aimd54/rocase/pkg/logger"
)

// Service handles evidence operations.
type Service struct {
	store *repository.Store
	blobs storage.BlobStore
	log   *logger.Logger
}

// NewService creates a new evidence service. blobs may be nil when uploads are disabled.
func NewService(store *repository.Store, blobs storage.BlobStore, log *logger.Logger) *Service {
	return &Service{store: store, blobs: blobs, log: log}
}

// AddInput references evidence hosted elsewhere.
type AddInput struct {
	Type        models.EvidenceType `json:"type"`
	URL         string              `json:"url"`
	FileKey     *string             `json:"file_key"`
	Description *string             `json:"description"`
}

// Add attaches an evidence reference to a case.
func (s *Service) Add(ctx context.Context, actor auth.Actor, caseID uint, in AddInput) (*models.Evidence, error) {
	if err := auth.Require(actor, auth.OpEvidenceAdd); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperr.Invalid("unknown evidence type %q", in.Type)
	}
	if strings.TrimSpace(in.URL) == "" {
		return nil, apperr.Invalid("url is required")
	}

	e := &models.Evidence{
		CaseID:         caseID,
		Type:           in.Type,
		URL:            strings.TrimSpace(in.URL),
		FileKey:        in.FileKey,
		Description:    in.Description,
		UploadedByID:   actor.ID,
		UploadedByName: actor.Name,
	}
	if err := s.create(ctx, actor, e); err != nil {
		return nil, err
	}
	return e, nil
}

// File is an uploaded evidence file.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Upload stores a file in blob storage and attaches it to a case.
// An empty kind is inferred from the content type.
func (s *Service) Upload(ctx context.Context, actor auth.Actor, caseID uint, f File, kind models.EvidenceType, description *string) (*models.Evidence, error) {
	if err := auth.Require(actor, auth.OpEvidenceAdd); err != nil {
		return nil, err
	}
	if s.blobs == nil {
		return nil, apperr.Unavailable(nil, "evidence uploads are not configured")
	}
	if kind == "" {
		kind = InferType(f.ContentType)
	}
	if !kind.Valid() || kind == models.EvidenceLink {
		return nil, apperr.Invalid("invalid evidence type %q for an upload", kind)
	}

	if _, err := s.store.Cases.GetByID(ctx, caseID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("case %d not found", caseID)
		}
		return nil, err
	}

	obj, err := s.blobs.Put(ctx, f.Name, f.ContentType, f.Body)
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to store evidence file")
	}

	key := obj.Key
	e := &models.Evidence{
		CaseID:         caseID,
		Type:           kind,
		URL:            obj.URL,
		FileKey:        &key,
		Description:    description,
		UploadedByID:   actor.ID,
		UploadedByName: actor.Name,
	}
	if err := s.create(ctx, actor, e); err != nil {
		s.discard(ctx, key, kind)
		return nil, err
	}
	return e, nil
}

func (s *Service) create(ctx context.Context, actor auth.Actor, e *models.Evidence) error {
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Cases.GetByID(ctx, e.CaseID); err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("case %d not found", e.CaseID)
			}
			return err
		}
		if err := tx.Evidence.Create(ctx, e); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionAddEvidence,
			EntityType: models.EntityEvidence,
			EntityID:   e.ID,
			Details:    map[string]any{"caseId": e.CaseID, "type": e.Type},
		})
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Uint("evidence_id", e.ID).
		Uint("case_id", e.CaseID).
		Str("type", string(e.Type)).
		Uint("actor_id", actor.ID).
		Msg("Evidence added")
	return nil
}

// Delete removes evidence and, for uploaded files, the stored blob.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := auth.Require(actor, auth.OpEvidenceDelete); err != nil {
		return err
	}

	var removed *models.Evidence
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		e, err := tx.Evidence.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("evidence %d not found", id)
			}
			return err
		}

		ok, err := tx.Evidence.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("evidence %d not found", id)
		}

		removed = e
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionDeleteEvidence,
			EntityType: models.EntityEvidence,
			EntityID:   id,
			Details:    map[string]any{"caseId": e.CaseID},
		})
	})
	if err != nil {
		return err
	}

	if removed.FileKey != nil {
		s.discard(ctx, *removed.FileKey, removed.Type)
	}

	s.log.Info().Uint("evidence_id", id).Uint("case_id", removed.CaseID).Uint("actor_id", actor.ID).Msg("Evidence deleted")
	return nil
}

// ListByCase returns the evidence attached to a case.
func (s *Service) ListByCase(ctx context.Context, actor auth.Actor, caseID uint) ([]models.Evidence, error) {
	if err := auth.Require(actor, auth.OpEvidenceRead); err != nil {
		return nil, err
	}
	return s.store.Evidence.ListByCase(ctx, caseID)
}

// discard removes an orphaned blob. Failures only leave garbage behind, so they are logged.
func (s *Service) discard(ctx context.Context, key string, kind models.EvidenceType) {
	if s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, key, kind); err != nil {
		s.log.Warn().Err(err).Str("file_key", key).Msg("Failed to delete evidence blob")
	}
}

// InferType maps a MIME content type to an evidence type.
func InferType(contentType string) models.EvidenceType {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return models.EvidenceImage
	case strings.HasPrefix(ct, "video/"):
		return models.EvidenceVideo
	case strings.HasPrefix(ct, "audio/"):
		return models.EvidenceAudio
	default:
		return models.EvidenceDocument
	}
}
