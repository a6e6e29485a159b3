// Package cases owns the case lifecycle: numbering, status changes and verdicts.
package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/pkg/logger"
)

const defaultOpenAttempts = 5

var errNumberTaken = errors.New("case number already taken")

// Service handles case lifecycle operations.
type Service struct {
	store        *repository.Store
	log          *logger.Logger
	now          func() time.Time
	openAttempts int
}

// NewService creates a new case service.
func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{
		store:        store,
		log:          log,
		now:          time.Now,
		openAttempts: defaultOpenAttempts,
	}
}

// CreateInput holds the fields of a directly opened case.
type CreateInput struct {
	AccusedPlayerID      uint            `json:"accused_player_id"`
	AccusedPlayerName    string          `json:"accused_player_name"`
	ComplainantName      string          `json:"complainant_name"`
	ComplainantDiscordID *string         `json:"complainant_discord_id"`
	CrimeType            string          `json:"crime_type"`
	Description          string          `json:"description"`
	Severity             models.Severity `json:"severity"`
	Witnesses            *string         `json:"witnesses"`
}

// Draft is a case about to be opened. The accused player is resolved inside the
// opening transaction.
type Draft struct {
	AccusedPlayerName    string
	ComplainantName      string
	ComplainantDiscordID *string
	CrimeType            string
	Description          string
	Severity             models.Severity
	Witnesses            *string
	Source               string
}

// PlayerResolver finds or creates the accused player inside tx.
type PlayerResolver func(ctx context.Context, tx *repository.Store) (*models.Player, error)

// AfterOpen runs inside the opening transaction once the case row exists.
type AfterOpen func(ctx context.Context, tx *repository.Store, c *models.Case) error

// Create opens a case against an existing player.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesCreate); err != nil {
		return nil, err
	}

	if in.AccusedPlayerID == 0 {
		return nil, apperr.Invalid("accused_player_id is required")
	}
	if strings.TrimSpace(in.ComplainantName) == "" {
		return nil, apperr.Invalid("complainant_name is required")
	}
	if strings.TrimSpace(in.CrimeType) == "" {
		return nil, apperr.Invalid("crime_type is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Invalid("description is required")
	}
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}
	if !in.Severity.Valid() {
		return nil, apperr.Invalid("unknown severity %q", in.Severity)
	}

	// Resolve up front so a missing player does not burn a case number.
	if _, err := s.store.Players.GetByID(ctx, in.AccusedPlayerID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("player %d not found", in.AccusedPlayerID)
		}
		return nil, err
	}

	draft := Draft{
		AccusedPlayerName:    strings.TrimSpace(in.AccusedPlayerName),
		ComplainantName:      strings.TrimSpace(in.ComplainantName),
		ComplainantDiscordID: in.ComplainantDiscordID,
		CrimeType:            strings.TrimSpace(in.CrimeType),
		Description:          in.Description,
		Severity:             in.Severity,
		Witnesses:            in.Witnesses,
		Source:               metrics.SourceDirect,
	}

	resolve := func(ctx context.Context, tx *repository.Store) (*models.Player, error) {
		player, err := tx.Players.GetByID(ctx, in.AccusedPlayerID)
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("player %d not found", in.AccusedPlayerID)
		}
		return player, err
	}

	return s.Open(ctx, actor, draft, resolve, func(ctx context.Context, tx *repository.Store, c *models.Case) error {
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionCreateCase,
			EntityType: models.EntityCase,
			EntityID:   c.ID,
			Details:    map[string]any{"caseNumber": c.CaseNumber, "crimeType": c.CrimeType},
		})
	})
}

// Open allocates a case number and writes the case, its player counter and
// whatever after adds in one transaction. A number collision retries with a
// freshly allocated number. Callers are responsible for authorization.
func (s *Service) Open(ctx context.Context, actor auth.Actor, draft Draft, resolve PlayerResolver, after AfterOpen) (*models.Case, error) {
	year := s.now().UTC().Year()

	for attempt := 1; attempt <= s.openAttempts; attempt++ {
		seq, err := s.store.Sequences.Next(ctx, year)
		if err != nil {
			return nil, err
		}
		number := models.FormatCaseNumber(year, seq)

		var created *models.Case
		err = s.store.InTx(ctx, func(tx *repository.Store) error {
			player, err := resolve(ctx, tx)
			if err != nil {
				return err
			}

			name := draft.AccusedPlayerName
			if name == "" {
				name = player.RobloxUsername
			}

			c := &models.Case{
				CaseNumber:           number,
				Status:               models.CaseStatusOpen,
				Severity:             draft.Severity,
				Verdict:              models.VerdictPending,
				CrimeType:            draft.CrimeType,
				Description:          draft.Description,
				AccusedPlayerID:      player.ID,
				AccusedPlayerName:    name,
				ComplainantName:      draft.ComplainantName,
				ComplainantDiscordID: draft.ComplainantDiscordID,
				Witnesses:            draft.Witnesses,
				CreatedByID:          actor.ID,
			}
			if err := tx.Cases.Create(ctx, c); err != nil {
				if repository.IsDuplicate(err) {
					return errNumberTaken
				}
				return err
			}

			if err := tx.Players.IncrementCounter(ctx, player.ID, models.CounterTotalCases); err != nil {
				return err
			}

			if after != nil {
				if err := after(ctx, tx, c); err != nil {
					return err
				}
			}
			created = c
			return nil
		})

		if errors.Is(err, errNumberTaken) {
			metrics.RecordCaseNumberRetry()
			s.log.Warn().Str("case_number", number).Int("attempt", attempt).Msg("Case number taken, allocating another")
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.RecordCaseOpened(draft.Source)
		s.log.Info().
			Uint("case_id", created.ID).
			Str("case_number", created.CaseNumber).
			Uint("player_id", created.AccusedPlayerID).
			Uint("actor_id", actor.ID).
			Str("source", draft.Source).
			Msg("Case opened")
		return created, nil
	}

	return nil, fmt.Errorf("failed to allocate a free case number after %d attempts", s.openAttempts)
}

// UpdateStatus moves a case between the non-terminal statuses.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id uint, status models.CaseStatus) (*models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesStatus); err != nil {
		return nil, err
	}
	if status == models.CaseStatusClosed {
		return nil, apperr.Invalid("cases can only be closed by finalizing them")
	}
	if !status.Valid() {
		return nil, apperr.Invalid("unknown status %q", status)
	}

	var updated *models.Case
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		c, err := s.lockOpenCase(ctx, tx, id)
		if err != nil {
			return err
		}

		ok, err := tx.Cases.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("case %s is closed", c.CaseNumber)
		}
		c.Status = status

		if err := audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionUpdateCaseStatus,
			EntityType: models.EntityCase,
			EntityID:   id,
			Details:    map[string]any{"newStatus": status},
		}); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCaseStatusChange(string(status))
	s.log.Info().
		Uint("case_id", id).
		Str("status", string(status)).
		Uint("actor_id", actor.ID).
		Msg("Case status updated")
	return updated, nil
}

// FinalizeInput holds the verdict of a case.
type FinalizeInput struct {
	Verdict    models.Verdict `json:"verdict"`
	Punishment *string        `json:"punishment"`
}

// Finalize closes a case with a verdict and updates the accused player's record.
func (s *Service) Finalize(ctx context.Context, actor auth.Actor, id uint, in FinalizeInput) (*models.Case, error) {
	if err := auth.Require(actor, auth.OpCasesFinalize); err != nil {
		return nil, err
	}

	var punishment *string
	var counter string
	switch in.Verdict {
	case models.VerdictGuilty:
		if in.Punishment == nil || strings.TrimSpace(*in.Punishment) == "" {
			return nil, apperr.Invalid("punishment is required for a guilty verdict")
		}
		p := strings.TrimSpace(*in.Punishment)
		punishment = &p
		counter = models.CounterConvictions
	case models.VerdictNotGuilty:
		counter = models.CounterAcquittals
	default:
		return nil, apperr.Invalid("verdict must be %q or %q", models.VerdictGuilty, models.VerdictNotGuilty)
	}

	var closed *models.Case
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		c, err := s.lockOpenCase(ctx, tx, id)
		if err != nil {
			return err
		}

		closedAt := s.now().UTC()
		ok, err := tx.Cases.Close(ctx, id, in.Verdict, punishment, actor.ID, closedAt)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("case %s is already closed", c.CaseNumber)
		}

		if err := tx.Players.IncrementCounter(ctx, c.AccusedPlayerID, counter); err != nil {
			return err
		}

		if err := audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionFinalizeCase,
			EntityType: models.EntityCase,
			EntityID:   id,
			Details:    map[string]any{"verdict": in.Verdict, "punishment": punishment},
		}); err != nil {
			return err
		}

		c.Status = models.CaseStatusClosed
		c.Verdict = in.Verdict
		c.Punishment = punishment
		c.ClosedByID = &actor.ID
		c.ClosedAt = &closedAt
		closed = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCaseFinalized(string(in.Verdict))
	s.log.Info().
		Uint("case_id", id).
		Str("case_number", closed.CaseNumber).
		Str("verdict", string(in.Verdict)).
		Uint("actor_id", actor.ID).
		Msg("Case finalized")
	return closed, nil
}

func (s *Service) lockOpenCase(ctx context.Context, tx *repository.Store, id uint) (*models.Case, error) {
	c, err := tx.Cases.GetForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("case %d not found", id)
		}
		return nil, err
	}
	if c.IsClosed() {
		return nil, apperr.Conflict("case %s is already closed", c.CaseNumber)
	}
	return c, nil
}
