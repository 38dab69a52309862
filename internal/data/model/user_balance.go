package model

import "time"

// UserBalance is the per-user credits row. Mutated only through the single
// consume transaction or the post-payment credit transaction.
type UserBalance struct {
	UserID         int64      `gorm:"primaryKey;autoIncrement:false"`
	FreeRemaining  int        `gorm:"not null;default:0"`
	PaidRemaining  int        `gorm:"not null;default:0"`
	UnlimitedUntil *time.Time `gorm:""`
	TotalUsed      int        `gorm:"not null;default:0"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}
