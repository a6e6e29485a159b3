package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an immutable record of one accepted state change.
// Actor fields are snapshots, not references.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Action     string         `gorm:"size:100;not null" json:"action"`
	EntityType string         `gorm:"size:50;not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint           `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Details    datatypes.JSON `json:"details"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	UserName   string         `gorm:"size:255;not null" json:"user_name"`
	UserRole   Role           `gorm:"size:20;not null" json:"user_role"`
	IPAddress  *string        `gorm:"size:45" json:"ip_address"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action codes.
const (
	ActionUpdateUserRole     = "UPDATE_USER_ROLE"
	ActionUpsertPlayer       = "UPSERT_PLAYER"
	ActionCreateCase         = "CREATE_CASE"
	ActionUpdateCaseStatus   = "UPDATE_CASE_STATUS"
	ActionFinalizeCase       = "FINALIZE_CASE"
	ActionAddEvidence        = "ADD_EVIDENCE"
	ActionDeleteEvidence     = "DELETE_EVIDENCE"
	ActionAddNote            = "ADD_NOTE"
	ActionUpdateNote         = "UPDATE_NOTE"
	ActionDeleteNote         = "DELETE_NOTE"
	ActionCreateCaseRequest  = "CREATE_CASE_REQUEST"
	ActionApproveCaseRequest = "APPROVE_CASE_REQUEST"
	ActionRejectCaseRequest  = "REJECT_CASE_REQUEST"
)

// Audit entity types.
const (
	EntityUser        = "user"
	EntityPlayer      = "player"
	EntityCase        = "case"
	EntityEvidence    = "evidence"
	EntityNote        = "note"
	EntityCaseRequest = "case_request"
)
