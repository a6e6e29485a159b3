// Package notes manages staff commentary on cases.
package notes

import (
	"context"
	"strings"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/pkg/logger"
)

// Service handles note operations.
type Service struct {
	store *repository.Store
	log   *logger.Logger
}

// NewService creates a new note service.
func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Add attaches a note authored by actor to a case.
func (s *Service) Add(ctx context.Context, actor auth.Actor, caseID uint, content string) (*models.Note, error) {
	if err := auth.Require(actor, auth.OpNotesAdd); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Invalid("content is required")
	}

	note := &models.Note{
		CaseID:     caseID,
		Content:    content,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
	}
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Cases.GetByID(ctx, caseID); err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("case %d not found", caseID)
			}
			return err
		}
		if err := tx.Notes.Create(ctx, note); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionAddNote,
			EntityType: models.EntityNote,
			EntityID:   note.ID,
			Details:    map[string]any{"caseId": caseID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("note_id", note.ID).Uint("case_id", caseID).Uint("actor_id", actor.ID).Msg("Note added")
	return note, nil
}

// Update replaces the content of a note.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uint, content string) (*models.Note, error) {
	if err := auth.Require(actor, auth.OpNotesUpdate); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Invalid("content is required")
	}

	var updated *models.Note
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		ok, err := tx.Notes.UpdateContent(ctx, id, content)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("note %d not found", id)
		}
		if updated, err = tx.Notes.GetByID(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionUpdateNote,
			EntityType: models.EntityNote,
			EntityID:   id,
			Details:    map[string]any{"caseId": updated.CaseID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("note_id", id).Uint("actor_id", actor.ID).Msg("Note updated")
	return updated, nil
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := auth.Require(actor, auth.OpNotesDelete); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		note, err := tx.Notes.GetByID(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("note %d not found", id)
			}
			return err
		}
		if _, err := tx.Notes.Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionDeleteNote,
			EntityType: models.EntityNote,
			EntityID:   id,
			Details:    map[string]any{"caseId": note.CaseID},
		})
	})
	if err != nil {
		return err
	}

	s.log.Info().Uint("note_id", id).Uint("actor_id", actor.ID).Msg("Note deleted")
	return nil
}

// ListByCase returns the notes on a case.
func (s *Service) ListByCase(ctx context.Context, actor auth.Actor, caseID uint) ([]models.Note, error) {
	if err := auth.Require(actor, auth.OpNotesRead); err != nil {
		return nil, err
	}
	return s.store.Notes.ListByCase(ctx, caseID)
}
