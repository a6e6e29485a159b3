// Package models defines the persisted records of the case tracker.
package models

import (
	"fmt"
	"time"
)

// Role is one of the five fixed authorization levels.
type Role string

// Role constants.
const (
	RoleAdmin        Role = "admin"
	RoleJudge        Role = "judge"
	RoleInvestigator Role = "investigator"
	RoleOfficer      Role = "officer"
	RoleMember       Role = "member"
)

// Roles lists every role, highest privilege first.
var Roles = []Role{RoleAdmin, RoleJudge, RoleInvestigator, RoleOfficer, RoleMember}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User represents an authenticated staff member or community member.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OpenID          string    `gorm:"column:open_id;uniqueIndex;not null;size:64" json:"open_id"`
	Name            string    `gorm:"size:255" json:"name"`
	Email           string    `gorm:"size:320" json:"email"`
	LoginMethod     string    `gorm:"size:64" json:"login_method"`
	Role            Role      `gorm:"size:20;not null;default:member;index" json:"role"`
	DiscordID       string    `gorm:"size:64;index" json:"discord_id"`
	DiscordUsername string    `gorm:"size:255" json:"discord_username"`
	LastSignedIn    time.Time `gorm:"not null" json:"last_signed_in"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the name used in audit snapshots.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return "Unknown"
	}
	return u.Name
}
