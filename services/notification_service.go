package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/vidcourse/api/model"
	"gorm.io/gorm"
)

// NotificationService creates and manages user notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify creates a notification for a user. Failures are logged, not
// returned; a lost notification must never fail the action that caused it.
func (s *NotificationService) Notify(ctx context.Context, userID uint, ntype model.NotificationType, category model.NotificationCategory, title, message string, meta model.NotificationMetadata) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	notification := model.UserNotification{
		UserID:   userID,
		Type:     ntype,
		Category: category,
		Title:    title,
		Message:  message,
		Metadata: metaJSON,
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to create notification for user %d: %v", userID, err)
	}
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]model.UserNotification, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.UserNotification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, total, err
}

// UnreadCount returns the number of unread notifications for a user
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks a single notification as read, scoped to the owner
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	result := s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
