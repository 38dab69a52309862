package model

import "time"

// Conversion is an append-only funnel event.
type Conversion struct {
	ID              int64     `gorm:"primaryKey"`
	UserID          int64     `gorm:"not null;index"`
	ClientID        string    `gorm:"type:varchar(36)"`
	ConversionType  string    `gorm:"type:varchar(32);not null;index"`
	ConversionValue float64   `gorm:"type:decimal(10,2);default:0"`
	Currency        string    `gorm:"type:varchar(8);default:'RUB'"`
	PackageID       string    `gorm:"type:varchar(32)"`
	DivinationType  string    `gorm:"type:varchar(16)"`
	Metadata        string    `gorm:"type:jsonb"`
	Exported        bool      `gorm:"default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}
