package models

import (
	"encoding/json"
	"time"
)

// CaseRequestStatus is the review state of a member submission.
type CaseRequestStatus string

// CaseRequestStatus constants.
const (
	CaseRequestPending  CaseRequestStatus = "pending"
	CaseRequestApproved CaseRequestStatus = "approved"
	CaseRequestRejected CaseRequestStatus = "rejected"
)

// UnspecifiedComplainant is stored when an approved request names no complainant.
const UnspecifiedComplainant = "غير محدد"

// CaseRequest is a member-submitted candidate case awaiting staff review.
type CaseRequest struct {
	ID                        uint              `gorm:"primaryKey" json:"id"`
	Status                    CaseRequestStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	SuspectRobloxID           int64             `gorm:"column:suspect_roblox_id;not null" json:"suspect_roblox_id"`
	SuspectRobloxUsername     string            `gorm:"column:suspect_roblox_username;size:255;not null" json:"suspect_roblox_username"`
	ComplainantRobloxID       *int64            `gorm:"column:complainant_roblox_id" json:"complainant_roblox_id"`
	ComplainantRobloxUsername *string           `gorm:"column:complainant_roblox_username;size:255" json:"complainant_roblox_username"`
	CrimeType                 string            `gorm:"size:100;not null" json:"crime_type"`
	Description               string            `gorm:"type:text;not null" json:"description"`
	Location                  *string           `gorm:"size:255" json:"location"`
	IncidentDate              *time.Time        `json:"incident_date"`
	EvidenceURLs              *string           `gorm:"column:evidence_urls;type:text" json:"evidence_urls"`
	RequesterID               uint              `gorm:"not null;index" json:"requester_id"`
	RequesterName             string            `gorm:"size:255;not null" json:"requester_name"`
	ReviewerID                *uint             `json:"reviewer_id"`
	ReviewerName              *string           `gorm:"size:255" json:"reviewer_name"`
	ReviewNotes               *string           `gorm:"type:text" json:"review_notes"`
	ReviewedAt                *time.Time        `json:"reviewed_at"`
	ApprovedCaseID            *uint             `json:"approved_case_id"`
	CreatedAt                 time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt                 time.Time         `json:"updated_at"`
}

// TableName specifies the table name for CaseRequest model.
func (CaseRequest) TableName() string {
	return "case_requests"
}

// IsPending reports whether the request can still be reviewed.
func (r *CaseRequest) IsPending() bool {
	return r.Status == CaseRequestPending
}

// EncodeEvidenceURLs serializes urls into the stored column form.
func EncodeEvidenceURLs(urls []string) (*string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// DecodeEvidenceURLs parses the stored evidence list.
// An empty column yields an empty list.
func (r *CaseRequest) DecodeEvidenceURLs() ([]string, error) {
	if r.EvidenceURLs == nil || *r.EvidenceURLs == "" {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(*r.EvidenceURLs), &urls); err != nil {
		return nil, err
	}
	return urls, nil
}
