package models

import (
	"time"

	"gorm.io/gorm"
)

type RoundResult struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SessionID   uint           `json:"session_id" gorm:"not null;index"`
	Number      int            `json:"number" gorm:"not null"`
	Submissions string         `json:"submissions" gorm:"type:text"` // JSON player id -> words
	Duplicates  string         `json:"duplicates" gorm:"type:text"`  // JSON word list
	StartedAt   time.Time      `json:"started_at"`
	EndedAt     time.Time      `json:"ended_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Session GameSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
}
