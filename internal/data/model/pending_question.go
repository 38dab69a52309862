package model

import "time"

// PendingQuestion bridges the browser card-selection surface back into the
// conversation flow. Created before the handoff, deleted once consumed.
type PendingQuestion struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false"`
	Question  string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
