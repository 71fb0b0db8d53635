package model

import (
	"time"

	"gorm.io/gorm"
)

// CoursePassword is a single-use token minted by an admin. Redeeming it
// activates a subscription for the password's course and burns the token.
type CoursePassword struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID     uint           `gorm:"not null;index" json:"course_id"`
	Password     string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"password"`
	Used         bool           `gorm:"default:false;index" json:"used"`
	UsedByUserID *uint          `json:"used_by_user_id,omitempty"`
	UsedAt       *time.Time     `json:"used_at,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"` // nil means no expiry

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	UsedBy *User  `gorm:"foreignKey:UsedByUserID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for CoursePassword
func (CoursePassword) TableName() string {
	return "course_passwords"
}

// IsRedeemableAt reports whether the password can still be redeemed: never
// used and not past its expiry. An expired password is rejected regardless
// of the used flag.
func (p *CoursePassword) IsRedeemableAt(now time.Time) bool {
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	return !p.Used
}
