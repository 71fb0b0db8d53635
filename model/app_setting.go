package model

import (
	"time"

	"gorm.io/gorm"
)

// Setting keys seeded at startup. Public settings back the portal's landing
// and subscription pages; the rest are server-side knobs.
const (
	SettingPortalName       = "portal.name"
	SettingWhatsAppNumber   = "subscriptions.whatsapp_number"
	SettingMaxReceiptSizeMB = "uploads.max_receipt_size_mb"
)

// AppSetting is a portal-wide configuration value keyed by a dotted name
type AppSetting struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"uniqueIndex;not null" json:"key"`
	Value       string         `gorm:"type:text;not null" json:"value"`
	Type        string         `gorm:"type:varchar(20);default:'string'" json:"type"` // string, int, bool, json
	Description string         `gorm:"type:text" json:"description"`
	IsPublic    bool           `gorm:"default:false" json:"is_public"` // Readable without auth
	Category    string         `gorm:"type:varchar(50)" json:"category"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for AppSetting
func (AppSetting) TableName() string {
	return "app_settings"
}
