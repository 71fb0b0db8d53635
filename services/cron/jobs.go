package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/services"
	"github.com/vidcourse/api/utils/auth"
)

// ExpireSubscriptions flips active subscriptions whose end date has passed
// to expired. Runs every 5 minutes.
func (m *CronManager) ExpireSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "expire_subscriptions"

	subscriptionService := services.NewSubscriptionService(m.db)
	expired, err := subscriptionService.ExpireSweep(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to expire subscriptions: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Expired %d subscriptions", expired))
}

// CleanupTokenBlacklist removes blacklist rows whose tokens have expired on
// their own. Runs hourly.
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	blacklistService := auth.NewBlacklistService(m.db)
	if err := blacklistService.CleanupExpiredTokens(ctx); err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup token blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, "Expired blacklist entries removed")
}

// PurgeCoursePasswords deletes unused course passwords that expired more
// than 30 days ago. Used passwords are kept as redemption records. Runs
// daily.
func (m *CronManager) PurgeCoursePasswords() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "purge_course_passwords"

	passwordService := services.NewPasswordService(m.db)
	purged, err := passwordService.PurgeExpired(ctx, 30*24*time.Hour)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge course passwords: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Purged %d expired passwords", purged))
}

// FlagStuckVideos disables videos that have sat in processing for more than
// 24 hours so admins notice failed uploads. Runs daily.
func (m *CronManager) FlagStuckVideos() {
	jobName := "flag_stuck_videos"

	cutoff := time.Now().Add(-24 * time.Hour)
	result := m.db.Model(&model.Video{}).
		Where("status = ? AND created_at < ?", model.VideoStatusProcessing, cutoff).
		Update("status", model.VideoStatusDisabled)
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to flag stuck videos: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Disabled %d stuck videos", result.RowsAffected))
}
