package model

import (
	"time"

	"gorm.io/gorm"
)

// VideoType distinguishes uploaded files from external links
type VideoType string

const (
	VideoTypeFile VideoType = "file" // Stored in object storage, played via presigned URL
	VideoTypeURL  VideoType = "url"  // External URL passed through unchanged
)

// VideoStatus represents the processing state of a video
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
	VideoStatusDisabled   VideoStatus = "disabled"
)

// Video represents a single video asset. Only status=ready videos are ever
// visible to students.
type Video struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Title            string         `gorm:"not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	VideoType        VideoType      `gorm:"type:varchar(10);not null;default:'file'" json:"video_type"`
	FileKey          string         `gorm:"type:varchar(500)" json:"-"` // Storage key, never exposed directly
	ExternalURL      string         `gorm:"type:text" json:"external_url,omitempty"`
	Status           VideoStatus    `gorm:"type:varchar(20);default:'processing';index" json:"status"`
	DurationSeconds  int            `gorm:"default:0" json:"duration_seconds"`
	FileSize         int64          `gorm:"default:0" json:"file_size"`
	UploadedByUserID uint           `gorm:"index" json:"uploaded_by_user_id"`

	// Relationships
	Courses    []CourseVideo `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	UploadedBy User          `gorm:"foreignKey:UploadedByUserID;constraint:OnDelete:SET NULL" json:"-"`
}

// IsPlayable reports whether students may see the video at all
func (v *Video) IsPlayable() bool {
	return v.Status == VideoStatusReady
}
