package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionPlayer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SessionID  uint           `json:"session_id" gorm:"not null;index"`
	PlayerID   string         `json:"player_id" gorm:"not null;index"`
	Name       string         `json:"name" gorm:"not null"`
	Score      int            `json:"score" gorm:"not null;default:0"`
	Lives      int            `json:"lives" gorm:"not null"`
	Host       bool           `json:"host" gorm:"not null;default:false"`
	Eliminated bool           `json:"eliminated" gorm:"not null;default:false"`
	JoinedAt   time.Time      `json:"joined_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Session GameSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
}
