// Package audit records and reads the append-only trail of accepted mutations.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/pkg/logger"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// Entry describes one accepted mutation.
type Entry struct {
	Action     string
	EntityType string
	EntityID   uint
	Details    any
}

// Service writes and reads audit entries.
type Service struct {
	store *repository.Store
	log   *logger.Logger
}

// NewService creates a new audit service.
func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Record appends e on behalf of actor using tx, which must be the transaction
// that applied the mutation so the entry commits or rolls back with it.
func Record(ctx context.Context, tx *repository.Store, actor auth.Actor, e Entry) error {
	var details datatypes.JSON
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details for %s: %w", e.Action, err)
		}
		details = datatypes.JSON(raw)
	}

	var ip *string
	if actor.IP != "" {
		ip = &actor.IP
	}

	entry := &models.AuditLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    details,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserRole:   actor.Role,
		IPAddress:  ip,
	}
	if err := tx.Audit.Append(ctx, entry); err != nil {
		return err
	}

	action := e.Action
	tx.AfterCommit(func() { metrics.RecordAuditEntry(action) })
	return nil
}

// List returns a page of the audit trail, newest first.
func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]models.AuditLog, error) {
	if err := auth.Require(actor, auth.OpAuditRead); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Audit.List(ctx, limit, offset)
}

// ByEntity returns the history of one entity, newest first.
func (s *Service) ByEntity(ctx context.Context, actor auth.Actor, entityType string, entityID uint) ([]models.AuditLog, error) {
	if err := auth.Require(actor, auth.OpAuditRead); err != nil {
		return nil, err
	}
	return s.store.Audit.ListByEntity(ctx, entityType, entityID)
}
