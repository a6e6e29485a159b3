package models

import "time"

// Player is a tracked Roblox account that cases are opened against.
type Player struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RobloxUserID   int64     `gorm:"column:roblox_user_id;uniqueIndex;not null" json:"roblox_user_id"`
	RobloxUsername string    `gorm:"column:roblox_username;size:255;not null;index" json:"roblox_username"`
	TotalCases     int       `gorm:"not null;default:0" json:"total_cases"`
	Convictions    int       `gorm:"not null;default:0" json:"convictions"`
	Acquittals     int       `gorm:"not null;default:0" json:"acquittals"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Player model.
func (Player) TableName() string {
	return "players"
}

// ConvictionRate returns convictions as a percentage of total cases.
func (p *Player) ConvictionRate() float64 {
	if p.TotalCases == 0 {
		return 0
	}
	return float64(p.Convictions) / float64(p.TotalCases) * 100
}

// Player counter columns.
const (
	CounterTotalCases  = "total_cases"
	CounterConvictions = "convictions"
	CounterAcquittals  = "acquittals"
)
