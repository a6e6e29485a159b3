package models

import (
	"fmt"
	"time"
)

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

// CaseStatus constants.
const (
	CaseStatusOpen            CaseStatus = "open"
	CaseStatusInvestigating   CaseStatus = "investigating"
	CaseStatusPendingJudgment CaseStatus = "pending_judgment"
	CaseStatusClosed          CaseStatus = "closed"
)

// CaseStatuses lists every status in lifecycle order.
var CaseStatuses = []CaseStatus{CaseStatusOpen, CaseStatusInvestigating, CaseStatusPendingJudgment, CaseStatusClosed}

// Valid reports whether s is a known status.
func (s CaseStatus) Valid() bool {
	for _, status := range CaseStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Severity is an informational risk classification.
type Severity string

// Severity constants.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Verdict is the adjudicated outcome of a case.
type Verdict string

// Verdict constants.
const (
	VerdictPending   Verdict = "pending"
	VerdictGuilty    Verdict = "guilty"
	VerdictNotGuilty Verdict = "not_guilty"
)

// Case is a disciplinary matter against a player.
type Case struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	CaseNumber           string     `gorm:"size:20;uniqueIndex;not null" json:"case_number"`
	Status               CaseStatus `gorm:"size:20;not null;default:open;index" json:"status"`
	Severity             Severity   `gorm:"size:20;not null;default:medium" json:"severity"`
	CrimeType            string     `gorm:"size:255;not null;index" json:"crime_type"`
	Description          string     `gorm:"type:text;not null" json:"description"`
	AccusedPlayerID      uint       `gorm:"not null;index" json:"accused_player_id"`
	AccusedPlayerName    string     `gorm:"size:255;not null" json:"accused_player_name"`
	ComplainantName      string     `gorm:"size:255;not null" json:"complainant_name"`
	ComplainantDiscordID *string    `gorm:"size:64" json:"complainant_discord_id"`
	Witnesses            *string    `gorm:"type:text" json:"witnesses"`
	Verdict              Verdict    `gorm:"size:20;not null;default:pending" json:"verdict"`
	Punishment           *string    `gorm:"type:text" json:"punishment"`
	CreatedByID          uint       `gorm:"not null" json:"created_by_id"`
	ClosedByID           *uint      `json:"closed_by_id"`
	ClosedAt             *time.Time `json:"closed_at"`
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Case model.
func (Case) TableName() string {
	return "cases"
}

// IsClosed reports whether the case reached its terminal state.
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// CaseNumberPrefix is the literal prefix of every case number.
const CaseNumberPrefix = "RC"

// FormatCaseNumber renders a case number as RC-YYYY-NNNNN.
func FormatCaseNumber(year, sequence int) string {
	return fmt.Sprintf("%s-%d-%05d", CaseNumberPrefix, year, sequence)
}

// CaseSequence is the per-year counter used to allocate case numbers.
type CaseSequence struct {
	Year      int       `gorm:"primaryKey;autoIncrement:false" json:"year"`
	LastValue int       `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for CaseSequence model.
func (CaseSequence) TableName() string {
	return "case_sequences"
}

// EvidenceType classifies an evidence reference.
type EvidenceType string

// EvidenceType constants.
const (
	EvidenceImage    EvidenceType = "image"
	EvidenceVideo    EvidenceType = "video"
	EvidenceDocument EvidenceType = "document"
	EvidenceLink     EvidenceType = "link"
	EvidenceAudio    EvidenceType = "audio"
)

// Valid reports whether t is a known evidence type.
func (t EvidenceType) Valid() bool {
	switch t {
	case EvidenceImage, EvidenceVideo, EvidenceDocument, EvidenceLink, EvidenceAudio:
		return true
	}
	return false
}

// Evidence is a reference attached to exactly one case.
type Evidence struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	CaseID         uint         `gorm:"not null;index" json:"case_id"`
	Type           EvidenceType `gorm:"size:20;not null" json:"type"`
	URL            string       `gorm:"column:url;type:text;not null" json:"url"`
	FileKey        *string      `gorm:"type:text" json:"file_key"`
	Description    *string      `gorm:"type:text" json:"description"`
	UploadedByID   uint         `gorm:"not null" json:"uploaded_by_id"`
	UploadedByName string       `gorm:"size:255;not null" json:"uploaded_by_name"`
	CreatedAt      time.Time    `json:"created_at"`
}

// TableName specifies the table name for Evidence model.
func (Evidence) TableName() string {
	return "evidence"
}

// Note is staff commentary on a case.
type Note struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CaseID     uint      `gorm:"not null;index" json:"case_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   uint      `gorm:"not null" json:"author_id"`
	AuthorName string    `gorm:"size:255;not null" json:"author_name"`
	AuthorRole Role      `gorm:"size:20;not null" json:"author_role"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for Note model.
func (Note) TableName() string {
	return "notes"
}
