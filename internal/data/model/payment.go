package model

import (
	"time"

	"divination-bot/internal/constants"
)

// Payment intent status constants.
const (
	PaymentStatusPending   = constants.PaymentStatusPending
	PaymentStatusSucceeded = constants.PaymentStatusSucceeded
	PaymentStatusCanceled  = constants.PaymentStatusCanceled
)

// Payment is a gateway payment intent tracked by its gateway-assigned id.
// pending -> succeeded happens at most once; the succeeded transition is the
// idempotency anchor for balance crediting.
type Payment struct {
	PaymentID   string     `gorm:"primaryKey;type:varchar(64)"`
	UserID      int64      `gorm:"not null;index"`
	PackageID   string     `gorm:"type:varchar(32);not null"`
	Amount      int64      `gorm:"not null"` // kopecks
	Status      string     `gorm:"type:varchar(16);not null;default:'pending'"`
	Email       string     `gorm:"type:varchar(255)"`
	Metadata    string     `gorm:"type:jsonb"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	CompletedAt *time.Time `gorm:""`
}
