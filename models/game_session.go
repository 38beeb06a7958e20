package models

import (
	"time"

	"gorm.io/gorm"
)

type GameSession struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null"`
	Code         string         `json:"code" gorm:"uniqueIndex;not null"`
	Mode         string         `json:"mode" gorm:"not null"`
	Category     string         `json:"category" gorm:"not null"`
	RoundSeconds int            `json:"round_seconds" gorm:"not null"`
	MaxPlayers   int            `json:"max_players" gorm:"not null"`
	Lives        int            `json:"lives" gorm:"not null"`
	Status       string         `json:"status" gorm:"not null;default:'open'"` // open, active, round_ended, game_ended
	WinnerName   string         `json:"winner_name"`
	RoundsPlayed int            `json:"rounds_played" gorm:"not null;default:0"`
	StartedAt    *time.Time     `json:"started_at"`
	EndedAt      *time.Time     `json:"ended_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User    User            `json:"user,omitempty"`
	Players []SessionPlayer `json:"players,omitempty" gorm:"foreignKey:SessionID"`
	Rounds  []RoundResult   `json:"rounds,omitempty" gorm:"foreignKey:SessionID"`
}
