// Package players tracks the Roblox accounts cases are opened against.
package players

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

const (
	defaultTopOffenders = 10
	maxTopOffenders     = 100
)

// Service handles player operations.
type Service struct {
	store *repository.Store
	log   *logger.Logger
}

// NewService creates a new player service.
func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// UpsertInput identifies a Roblox account.
type UpsertInput struct {
	RobloxUserID   int64  `json:"roblox_user_id"`
	RobloxUsername string `json:"roblox_username"`
}

// Upsert creates a player or refreshes its username.
func (s *Service) Upsert(ctx context.Context, actor auth.Actor, in UpsertInput) (*models.Player, error) {
	if err := auth.Require(actor, auth.OpPlayersUpsert); err != nil {
		return nil, err
	}
	if in.RobloxUserID <= 0 {
		return nil, apperr.Invalid("roblox_user_id is required")
	}
	username := strings.TrimSpace(in.RobloxUsername)
	if username == "" {
		return nil, apperr.Invalid("roblox_username is required")
	}

	var player *models.Player
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		var err error
		if player, err = tx.Players.Upsert(ctx, in.RobloxUserID, username); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionUpsertPlayer,
			EntityType: models.EntityPlayer,
			EntityID:   player.ID,
			Details:    map[string]any{"robloxUserId": in.RobloxUserID, "robloxUsername": username},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("player_id", player.ID).Int64("roblox_user_id", in.RobloxUserID).Msg("Player upserted")
	return player, nil
}

// GetByID returns one player.
func (s *Service) GetByID(ctx context.Context, actor auth.Actor, id uint) (*models.Player, error) {
	if err := auth.Require(actor, auth.OpPlayersRead); err != nil {
		return nil, err
	}
	player, err := s.store.Players.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apperr.NotFound("player %d not found", id)
	}
	return player, err
}

// GetByRobloxID returns the player with a Roblox user id.
func (s *Service) GetByRobloxID(ctx context.Context, actor auth.Actor, robloxUserID int64) (*models.Player, error) {
	if err := auth.Require(actor, auth.OpPlayersRead); err != nil {
		return nil, err
	}
	player, err := s.store.Players.GetByRobloxID(ctx, robloxUserID)
	if repository.IsNotFound(err) {
		return nil, apperr.NotFound("player with roblox id %d not found", robloxUserID)
	}
	return player, err
}

// TopOffenders returns the players with the most cases.
func (s *Service) TopOffenders(ctx context.Context, actor auth.Actor, limit int) ([]models.Player, error) {
	if err := auth.Require(actor, auth.OpPlayersRead); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopOffenders
	}
	if limit > maxTopOffenders {
		limit = maxTopOffenders
	}
	return s.store.Players.TopOffenders(ctx, limit)
}

// Stats is a player's record with its derived conviction rate.
type Stats struct {
	Player         *models.Player `json:"player"`
	ConvictionRate float64        `json:"conviction_rate"`
}

// Stats returns a player's record and conviction rate.
func (s *Service) Stats(ctx context.Context, actor auth.Actor, id uint) (*Stats, error) {
	player, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &Stats{Player: player, ConvictionRate: player.ConvictionRate()}, nil
}
