package cases

import (
	"context"
	"strings"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
)

// GetByID returns one case.
func (s *Service) GetByID(ctx context.Context, actor auth.Actor, id uint) (*models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesRead); err != nil {
		return nil, err
	}
	c, err := s.store.Cases.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apperr.NotFound("case %d not found", id)
	}
	return c, err
}

// GetByCaseNumber returns the case with the given number, ignoring letter case.
func (s *Service) GetByCaseNumber(ctx context.Context, actor auth.Actor, number string) (*models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesRead); err != nil {
		return nil, err
	}
	c, err := s.store.Cases.GetByCaseNumber(ctx, strings.TrimSpace(number))
	if repository.IsNotFound(err) {
		return nil, apperr.NotFound("case %s not found", number)
	}
	return c, err
}

// List returns all cases, or those in status when it is set.
func (s *Service) List(ctx context.Context, actor auth.Actor, status models.CaseStatus) ([]models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesRead); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("unknown status %q", status)
	}
	return s.store.Cases.List(ctx, status)
}

// ListByPlayer returns the cases against a player.
func (s *Service) ListByPlayer(ctx context.Context, actor auth.Actor, playerID uint) ([]models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesRead); err != nil {
		return nil, err
	}
	return s.store.Cases.ListByPlayer(ctx, playerID)
}

// Search matches query against case number, accused, complainant and crime type.
// An empty query returns every case.
func (s *Service) Search(ctx context.Context, actor auth.Actor, query string) ([]models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesRead); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.store.Cases.List(ctx, "")
	}
	return s.store.Cases.Search(ctx, query)
}
