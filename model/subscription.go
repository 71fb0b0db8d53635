package model

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusPending SubscriptionStatus = "pending"
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription represents a student's relationship to a course.
// Unique per (user, course); the row is upserted across onboarding paths.
type Subscription struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`
	UserID          uint               `gorm:"not null;uniqueIndex:idx_user_course" json:"user_id"`
	CourseID        uint               `gorm:"not null;uniqueIndex:idx_user_course" json:"course_id"`
	Status          SubscriptionStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	StartDate       *time.Time         `json:"start_date"`
	EndDate         *time.Time         `gorm:"index" json:"end_date"`
	PaymentProofKey string             `gorm:"type:varchar(500)" json:"payment_proof_key,omitempty"` // Storage key of the uploaded receipt, cleared on approval

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// IsActiveAt reports whether the subscription grants access at the given
// instant: status must be active and the instant inside [StartDate, EndDate].
func (s *Subscription) IsActiveAt(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.StartDate == nil || s.EndDate == nil {
		return false
	}
	return !now.Before(*s.StartDate) && !now.After(*s.EndDate)
}
