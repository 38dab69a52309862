package model

import "time"

// User is the chat platform user row. Created on first contact, never deleted.
type User struct {
	UserID              int64     `gorm:"primaryKey;autoIncrement:false"`
	Username            string    `gorm:"type:varchar(64)"`
	FirstName           string    `gorm:"type:varchar(128)"`
	LastName            string    `gorm:"type:varchar(128)"`
	LanguageCode        string    `gorm:"type:varchar(8)"`
	Email               string    `gorm:"type:varchar(255)"`
	IsBlocked           bool      `gorm:"default:false"`
	DailyCardSubscribed bool      `gorm:"default:true"`
	UTMSource           string    `gorm:"column:utm_source;type:varchar(64)"`
	UTMCampaign         string    `gorm:"column:utm_campaign;type:varchar(64)"`
	UTMContent          string    `gorm:"column:utm_content;type:varchar(64)"`
	UTMMedium           string    `gorm:"column:utm_medium;type:varchar(64)"`
	UTMTerm             string    `gorm:"column:utm_term;type:varchar(64)"`
	ClientID            string    `gorm:"type:varchar(36)"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	LastActiveAt        time.Time `gorm:"autoUpdateTime"`
}
