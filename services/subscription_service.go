package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCourseNotFound           = errors.New("course not found")
	ErrCourseInactive           = errors.New("course is not open for subscription")
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrAlreadySubscribed        = errors.New("subscription is already active")
	ErrInvalidOrExpiredPassword = errors.New("invalid or expired course password")
	ErrStorageDisabled          = errors.New("file storage is not configured")
)

// SubscriptionService manages the subscription lifecycle: the three
// onboarding paths, admin review, renewal and expiry.
type SubscriptionService struct {
	db            *gorm.DB
	storageClient *storage.Client
	notifications *NotificationService
	enableStorage bool
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	service := &SubscriptionService{
		db:            db,
		notifications: NewNotificationService(db),
	}

	storageClient, err := storage.NewClientFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to initialize storage client: %v. Receipt uploads will be disabled.", err)
	} else {
		service.storageClient = storageClient
		service.enableStorage = true
	}

	return service
}

// loadOpenCourse fetches a course that students may still subscribe to
func (s *SubscriptionService) loadOpenCourse(tx *gorm.DB, courseID uint) (*model.Course, error) {
	var course model.Course
	if err := tx.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.IsActive {
		return nil, ErrCourseInactive
	}
	return &course, nil
}

// upsertSubscription finds or creates the unique (user, course) row inside tx
func upsertSubscription(tx *gorm.DB, userID, courseID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = model.Subscription{
			UserID:   userID,
			CourseID: courseID,
			Status:   model.SubscriptionStatusPending,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return nil, err
		}
		return &sub, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// RequestByReceipt uploads a payment receipt to a private per-user storage
// path and upserts a pending subscription for manual admin review. The
// receipt content is not validated; it is advisory only.
func (s *SubscriptionService) RequestByReceipt(ctx context.Context, userID, courseID uint, fileHeader *multipart.FileHeader) (*model.Subscription, error) {
	if !s.enableStorage {
		return nil, ErrStorageDisabled
	}

	course, err := s.loadOpenCourse(s.db.WithContext(ctx), courseID)
	if err != nil {
		return nil, err
	}

	key := storage.ReceiptKey(userID, fileHeader.Filename)
	if err := s.storageClient.UploadMultipart(ctx, key, fileHeader); err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	var sub *model.Subscription
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err = upsertSubscription(tx, userID, courseID)
		if err != nil {
			return err
		}

		if sub.IsActiveAt(time.Now()) {
			return ErrAlreadySubscribed
		}

		// Replace a previously uploaded receipt
		oldKey := sub.PaymentProofKey

		sub.Status = model.SubscriptionStatusPending
		sub.PaymentProofKey = key
		if err := tx.Save(sub).Error; err != nil {
			return err
		}

		if oldKey != "" && oldKey != key {
			// Best effort; a dangling object is preferable to a failed request
			if delErr := s.storageClient.DeleteFile(ctx, oldKey); delErr != nil {
				log.Printf("Warning: failed to delete replaced receipt %s: %v", oldKey, delErr)
			}
		}
		return nil
	})
	if err != nil {
		// Roll back the orphaned upload
		if delErr := s.storageClient.DeleteFile(ctx, key); delErr != nil {
			log.Printf("Warning: failed to delete orphaned receipt %s: %v", key, delErr)
		}
		return nil, err
	}

	sub.Course = *course
	return sub, nil
}

// RequestByPassword redeems a one-time course password. Activation of the
// subscription and burning of the password happen in a single transaction so
// a crash can never leave an active subscription with a reusable password.
func (s *SubscriptionService) RequestByPassword(ctx context.Context, userID, courseID uint, password string) (*model.Subscription, error) {
	var sub *model.Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.loadOpenCourse(tx, courseID)
		if err != nil {
			return err
		}

		// Lock the password row so two concurrent redemptions cannot both
		// pass the used check
		var pw model.CoursePassword
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("course_id = ? AND password = ?", courseID, password).
			First(&pw).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidOrExpiredPassword
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if !pw.IsRedeemableAt(now) {
			return ErrInvalidOrExpiredPassword
		}

		sub, err = upsertSubscription(tx, userID, courseID)
		if err != nil {
			return err
		}

		start := now
		end := AddMonths(now, course.DurationMonths)
		sub.Status = model.SubscriptionStatusActive
		sub.StartDate = &start
		sub.EndDate = &end
		if err := tx.Save(sub).Error; err != nil {
			return err
		}

		pw.Used = true
		pw.UsedByUserID = &userID
		pw.UsedAt = &now
		return tx.Save(&pw).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, userID, model.NotificationTypeSuccess, model.NotificationCategorySubscription,
		"Subscription activated", "Your course password was accepted and your subscription is now active.",
		model.NotificationMetadata{CourseID: courseID, SubscriptionID: sub.ID})

	return sub, nil
}

// Approve activates a pending subscription (admin review of the uploaded
// receipt). The database writes are transactional; deleting the receipt
// object happens afterwards and is best effort, so the payment_proof column
// is never left pointing at a deleted object.
func (s *SubscriptionService) Approve(ctx context.Context, subscriptionID uint) (*model.Subscription, error) {
	var sub model.Subscription
	var oldReceiptKey string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Course").First(&sub, subscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		now := time.Now()
		start := now
		end := AddMonths(now, sub.Course.DurationMonths)

		oldReceiptKey = sub.PaymentProofKey
		sub.Status = model.SubscriptionStatusActive
		sub.StartDate = &start
		sub.EndDate = &end
		sub.PaymentProofKey = ""
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}

	if oldReceiptKey != "" && s.enableStorage {
		if delErr := s.storageClient.DeleteFile(ctx, oldReceiptKey); delErr != nil {
			log.Printf("Warning: failed to delete approved receipt %s: %v", oldReceiptKey, delErr)
		}
	}

	s.notifications.Notify(ctx, sub.UserID, model.NotificationTypeSuccess, model.NotificationCategorySubscription,
		"Subscription approved", fmt.Sprintf("Your subscription to %q has been approved.", sub.Course.Title),
		model.NotificationMetadata{CourseID: sub.CourseID, SubscriptionID: sub.ID})

	return &sub, nil
}

// Reject deletes the subscription row outright along with its receipt object
func (s *SubscriptionService) Reject(ctx context.Context, subscriptionID uint) error {
	var sub model.Subscription
	if err := s.db.WithContext(ctx).Preload("Course").First(&sub, subscriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}

	if err := s.db.WithContext(ctx).Unscoped().Delete(&sub).Error; err != nil {
		return err
	}

	if sub.PaymentProofKey != "" && s.enableStorage {
		if delErr := s.storageClient.DeleteFile(ctx, sub.PaymentProofKey); delErr != nil {
			log.Printf("Warning: failed to delete rejected receipt %s: %v", sub.PaymentProofKey, delErr)
		}
	}

	s.notifications.Notify(ctx, sub.UserID, model.NotificationTypeWarning, model.NotificationCategorySubscription,
		"Subscription rejected", fmt.Sprintf("Your subscription request for %q was rejected.", sub.Course.Title),
		model.NotificationMetadata{CourseID: sub.CourseID})

	return nil
}

// Renew extends a subscription by the given number of months from the later
// of now and the current end date, and resets the status to active. months=0
// falls back to the course's configured duration; a renewal can never be a
// zero-length grant.
func (s *SubscriptionService) Renew(ctx context.Context, subscriptionID uint, months int) (*model.Subscription, error) {
	var sub model.Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Course").First(&sub, subscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		if months <= 0 {
			months = sub.Course.DurationMonths
		}
		if months <= 0 {
			// Course soft-deleted out from under the subscription
			months = 1
		}

		now := time.Now()
		base := RenewalBase(now, sub.EndDate)
		end := AddMonths(base, months)

		if sub.StartDate == nil {
			sub.StartDate = &now
		}
		sub.Status = model.SubscriptionStatusActive
		sub.EndDate = &end
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, sub.UserID, model.NotificationTypeSuccess, model.NotificationCategorySubscription,
		"Subscription renewed", fmt.Sprintf("Your subscription has been extended by %d month(s).", months),
		model.NotificationMetadata{CourseID: sub.CourseID, SubscriptionID: sub.ID})

	return &sub, nil
}

// Create makes an active subscription directly (the WhatsApp negotiation
// path, where an admin grants access manually). months=0 uses the course's
// configured duration.
func (s *SubscriptionService) Create(ctx context.Context, userID, courseID uint, months int) (*model.Subscription, error) {
	var sub *model.Subscription

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		if months <= 0 {
			months = course.DurationMonths
		}

		var err error
		sub, err = upsertSubscription(tx, userID, courseID)
		if err != nil {
			return err
		}

		now := time.Now()
		start := now
		end := AddMonths(now, months)
		sub.Status = model.SubscriptionStatusActive
		sub.StartDate = &start
		sub.EndDate = &end
		return tx.Save(sub).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, userID, model.NotificationTypeSuccess, model.NotificationCategorySubscription,
		"Subscription created", "An administrator has granted you access to a course.",
		model.NotificationMetadata{CourseID: courseID, SubscriptionID: sub.ID})

	return sub, nil
}

// ExpireSweep flips active subscriptions whose window has passed to expired.
// Returns the number of rows updated. Invoked by the cron scheduler.
func (s *SubscriptionService) ExpireSweep(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ? AND end_date < ?", model.SubscriptionStatusActive, time.Now()).
		Update("status", model.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}

// ReceiptViewURL returns a short-lived presigned URL for reviewing the
// uploaded payment receipt
func (s *SubscriptionService) ReceiptViewURL(subscription *model.Subscription) (string, error) {
	if !s.enableStorage {
		return "", ErrStorageDisabled
	}
	if subscription.PaymentProofKey == "" {
		return "", errors.New("subscription has no payment receipt")
	}
	return s.storageClient.GetPresignedURL(subscription.PaymentProofKey, storage.ReceiptURLExpiry)
}

// ListForUser returns all of a user's subscriptions with their courses
func (s *SubscriptionService) ListForUser(ctx context.Context, userID uint) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}
