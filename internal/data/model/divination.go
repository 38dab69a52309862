package model

import "time"

// Divination is one completed reading. Immutable except for the
// interpretation text, which follow-up exchanges append to.
type Divination struct {
	ID             int64     `gorm:"primaryKey"`
	UserID         int64     `gorm:"not null;index"`
	DivinationType string    `gorm:"type:varchar(16);not null"`
	Question       string    `gorm:"type:text"`
	SelectedCards  CardList  `gorm:"type:jsonb"`
	Interpretation string    `gorm:"type:text"`
	IsFree         bool      `gorm:"default:false"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
