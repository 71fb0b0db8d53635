package model

import (
	"time"

	"gorm.io/gorm"
)

// JWTTokenBlacklist stores revoked token JTIs so logouts take effect before
// token expiry. Rows past ExpiresAt are pruned by a cron job.
type JWTTokenBlacklist struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	JTI       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"jti"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	TokenType string         `gorm:"type:varchar(10);not null" json:"token_type"` // access, refresh
	ExpiresAt time.Time      `gorm:"not null;index" json:"expires_at"`
	Reason    string         `gorm:"type:varchar(50)" json:"reason"` // logout, password_change, admin_revoke
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for JWTTokenBlacklist
func (JWTTokenBlacklist) TableName() string {
	return "jwt_token_blacklist"
}
