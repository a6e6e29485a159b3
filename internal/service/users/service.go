// Package users resolves signed-in identities and manages role assignments.
package users

import (
	"context"
	"time"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/internal/service/audit"
	"github.com/aimd54/rocase/pkg/logger"
)

// Service handles user operations.
type Service struct {
	store       *repository.Store
	ownerOpenID string
	log         *logger.Logger
	now         func() time.Time
}

// NewService creates a new user service. ownerOpenID names the identity that is always admin.
func NewService(store *repository.Store, ownerOpenID string, log *logger.Logger) *Service {
	return &Service{store: store, ownerOpenID: ownerOpenID, log: log, now: time.Now}
}

// Authenticate returns the user behind a verified identity, creating it on first sign-in.
// A token issued after the last recorded sign-in counts as a new sign-in.
func (s *Service) Authenticate(ctx context.Context, id auth.Identity, issuedAt time.Time) (*models.User, error) {
	if id.OpenID == "" {
		return nil, apperr.Invalid("identity has no open id")
	}

	user, err := s.store.Users.GetByOpenID(ctx, id.OpenID)
	if repository.IsNotFound(err) {
		return s.register(ctx, id, issuedAt)
	}
	if err != nil {
		return nil, err
	}

	changed := false
	if s.isOwner(id.OpenID) && user.Role != models.RoleAdmin {
		user.Role = models.RoleAdmin
		changed = true
	}
	if issuedAt.After(user.LastSignedIn) {
		changed = true
	}
	if !changed {
		return user, nil
	}

	if id.Name != "" {
		user.Name = id.Name
	}
	if id.Email != "" {
		user.Email = id.Email
	}
	if id.LoginMethod != "" {
		user.LoginMethod = id.LoginMethod
	}
	signedIn := user.LastSignedIn
	if issuedAt.After(signedIn) {
		signedIn = issuedAt
	}
	if err := s.store.Users.TouchSignIn(ctx, user, signedIn); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) register(ctx context.Context, id auth.Identity, issuedAt time.Time) (*models.User, error) {
	role := models.RoleMember
	if s.isOwner(id.OpenID) {
		role = models.RoleAdmin
	}
	if issuedAt.IsZero() {
		issuedAt = s.now().UTC()
	}

	user := &models.User{
		OpenID:       id.OpenID,
		Name:         id.Name,
		Email:        id.Email,
		LoginMethod:  id.LoginMethod,
		Role:         role,
		LastSignedIn: issuedAt,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		// A concurrent first request registered the same identity.
		if repository.IsDuplicate(err) {
			return s.store.Users.GetByOpenID(ctx, id.OpenID)
		}
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("role", string(role)).Msg("User registered")
	return user, nil
}

func (s *Service) isOwner(openID string) bool {
	return s.ownerOpenID != "" && openID == s.ownerOpenID
}

// GetAll lists every user.
func (s *Service) GetAll(ctx context.Context, actor auth.Actor) ([]models.User, error) {
	if err := auth.Require(actor, auth.OpUsersList); err != nil {
		return nil, err
	}
	return s.store.Users.List(ctx, "")
}

// UpdateRole assigns a new role to a user.
func (s *Service) UpdateRole(ctx context.Context, actor auth.Actor, userID uint, role models.Role) (*models.User, error) {
	if err := auth.Require(actor, auth.OpUsersSetRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.Invalid("unknown role %q", role)
	}

	var updated *models.User
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("user %d not found", userID)
			}
			return err
		}
		if s.isOwner(user.OpenID) && role != models.RoleAdmin {
			return apperr.Conflict("the owner account is always admin")
		}

		if err := tx.Users.UpdateRole(ctx, userID, role); err != nil {
			return err
		}
		if err := audit.Record(ctx, tx, actor, audit.Entry{
			Action:     models.ActionUpdateUserRole,
			EntityType: models.EntityUser,
			EntityID:   userID,
			Details:    map[string]any{"newRole": role, "previousRole": user.Role},
		}); err != nil {
			return err
		}
		user.Role = role
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", userID).Str("role", string(role)).Uint("actor_id", actor.ID).Msg("User role updated")
	return updated, nil
}
