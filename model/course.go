package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a purchasable video course
type Course struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Price          float64        `gorm:"default:0" json:"price"`
	DurationMonths int            `gorm:"default:1" json:"duration_months"` // Subscription length granted on activation
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`

	// Relationships
	Videos        []CourseVideo    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
	Subscriptions []Subscription   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Passwords     []CoursePassword `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseVideo is the ordered join between a course and its playlist videos
type CourseVideo struct {
	CourseID uint `gorm:"primaryKey" json:"course_id"`
	VideoID  uint `gorm:"primaryKey" json:"video_id"`
	Position int  `gorm:"not null;default:0" json:"position"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Video  Video  `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"video,omitempty"`
}

// TableName specifies the table name for CourseVideo
func (CourseVideo) TableName() string {
	return "course_videos"
}
