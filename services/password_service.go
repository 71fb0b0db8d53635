package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vidcourse/api/model"
	"gorm.io/gorm"
)

var (
	ErrPasswordNotFound    = errors.New("course password not found")
	ErrPasswordAlreadyUsed = errors.New("course password has already been used")
)

// PasswordService manages one-time course passwords (admin surface only;
// students redeem through the subscription service)
type PasswordService struct {
	db *gorm.DB
}

// NewPasswordService creates a new password service
func NewPasswordService(db *gorm.DB) *PasswordService {
	return &PasswordService{db: db}
}

// Mint creates a one-time password for a course. An empty password generates
// a random token; expiresAt may be nil for no expiry.
func (s *PasswordService) Mint(ctx context.Context, courseID uint, password string, expiresAt *time.Time) (*model.CoursePassword, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if password == "" {
		// Short random token, easy to hand out over chat
		password = strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	}

	pw := model.CoursePassword{
		CourseID:  courseID,
		Password:  password,
		ExpiresAt: expiresAt,
	}

	if err := s.db.WithContext(ctx).Create(&pw).Error; err != nil {
		return nil, err
	}
	return &pw, nil
}

// ListForCourse returns all passwords minted for a course, newest first
func (s *PasswordService) ListForCourse(ctx context.Context, courseID uint) ([]model.CoursePassword, error) {
	var passwords []model.CoursePassword
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&passwords).Error
	return passwords, err
}

// Revoke deletes an unused password. Used passwords are kept as a redemption
// record.
func (s *PasswordService) Revoke(ctx context.Context, passwordID uint) error {
	var pw model.CoursePassword
	if err := s.db.WithContext(ctx).First(&pw, passwordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPasswordNotFound
		}
		return err
	}

	if pw.Used {
		return ErrPasswordAlreadyUsed
	}

	return s.db.WithContext(ctx).Unscoped().Delete(&pw).Error
}

// PurgeExpired deletes unused passwords that expired more than the grace
// period ago. Invoked by the cron scheduler.
func (s *PasswordService) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace)
	result := s.db.WithContext(ctx).
		Unscoped().
		Where("used = ? AND expires_at IS NOT NULL AND expires_at < ?", false, cutoff).
		Delete(&model.CoursePassword{})
	return result.RowsAffected, result.Error
}
