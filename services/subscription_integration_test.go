package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/vidcourse/api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the Postgres instance configured through the usual
// DB_* environment variables. Tests calling it are skipped unless
// RUN_INTEGRATION_TESTS=true.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER_NAME")
	if user == "" {
		user = "postgres"
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "vidcourse_test"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, os.Getenv("DB_PASSWORD"), name, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Subscription{},
		&model.CoursePassword{},
		&model.UserNotification{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := model.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Name:         "Test Student",
		Role:         "student",
		Approved:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(&user) })
	return &user
}

func createTestCourse(t *testing.T, db *gorm.DB, months int) *model.Course {
	t.Helper()
	course := model.Course{
		Title:          fmt.Sprintf("Integration Course %d", time.Now().UnixNano()),
		DurationMonths: months,
		IsActive:       true,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(&course) })
	return &course
}

func TestPasswordRedemptionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, fmt.Sprintf("redeem-%d@example.com", time.Now().UnixNano()))
	course := createTestCourse(t, db, 2)

	passwordService := NewPasswordService(db)
	subscriptionService := NewSubscriptionService(db)

	pw, err := passwordService.Mint(ctx, course.ID, "", nil)
	if err != nil {
		t.Fatalf("failed to mint password: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(pw) })

	// Redeem it
	sub, err := subscriptionService.RequestByPassword(ctx, user.ID, course.ID, pw.Password)
	if err != nil {
		t.Fatalf("failed to redeem password: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(sub) })

	if sub.Status != model.SubscriptionStatusActive {
		t.Errorf("expected an active subscription, got %s", sub.Status)
	}
	if sub.StartDate == nil || sub.EndDate == nil {
		t.Fatal("expected the subscription window to be set")
	}
	wantEnd := AddMonths(*sub.StartDate, course.DurationMonths)
	if !sub.EndDate.Equal(wantEnd) {
		t.Errorf("expected end date %v (course duration %d months), got %v",
			wantEnd, course.DurationMonths, *sub.EndDate)
	}

	// The password is burned now
	var burned model.CoursePassword
	if err := db.First(&burned, pw.ID).Error; err != nil {
		t.Fatalf("failed to reload password: %v", err)
	}
	if !burned.Used || burned.UsedByUserID == nil || *burned.UsedByUserID != user.ID {
		t.Error("expected the password to be marked used by the redeeming user")
	}

	// Second redemption fails
	other := createTestUser(t, db, fmt.Sprintf("second-%d@example.com", time.Now().UnixNano()))
	if _, err := subscriptionService.RequestByPassword(ctx, other.ID, course.ID, pw.Password); err != ErrInvalidOrExpiredPassword {
		t.Errorf("expected ErrInvalidOrExpiredPassword on reuse, got %v", err)
	}
}

func TestExpiredPasswordIsRejected(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, fmt.Sprintf("expired-%d@example.com", time.Now().UnixNano()))
	course := createTestCourse(t, db, 1)

	passwordService := NewPasswordService(db)
	subscriptionService := NewSubscriptionService(db)

	future := time.Now().Add(time.Hour)
	pw, err := passwordService.Mint(ctx, course.ID, "", &future)
	if err != nil {
		t.Fatalf("failed to mint password: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(pw) })

	// Push the expiry into the past
	past := time.Now().Add(-time.Hour)
	if err := db.Model(pw).Update("expires_at", past).Error; err != nil {
		t.Fatalf("failed to expire password: %v", err)
	}

	if _, err := subscriptionService.RequestByPassword(ctx, user.ID, course.ID, pw.Password); err != ErrInvalidOrExpiredPassword {
		t.Errorf("expected ErrInvalidOrExpiredPassword for an expired password, got %v", err)
	}
}

func TestExpireSweepFlipsLapsedSubscriptions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, fmt.Sprintf("sweep-%d@example.com", time.Now().UnixNano()))
	course := createTestCourse(t, db, 1)

	subscriptionService := NewSubscriptionService(db)

	sub, err := subscriptionService.Create(ctx, user.ID, course.ID, 1)
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(sub) })

	// Backdate the window so the sweep catches it
	start := time.Now().Add(-60 * 24 * time.Hour)
	end := time.Now().Add(-24 * time.Hour)
	if err := db.Model(sub).Updates(map[string]interface{}{
		"start_date": start,
		"end_date":   end,
	}).Error; err != nil {
		t.Fatalf("failed to backdate subscription: %v", err)
	}

	if _, err := subscriptionService.ExpireSweep(ctx); err != nil {
		t.Fatalf("expire sweep failed: %v", err)
	}

	var swept model.Subscription
	if err := db.First(&swept, sub.ID).Error; err != nil {
		t.Fatalf("failed to reload subscription: %v", err)
	}
	if swept.Status != model.SubscriptionStatusExpired {
		t.Errorf("expected the subscription to be expired, got %s", swept.Status)
	}
	if !swept.EndDate.Equal(end) {
		t.Errorf("sweep must not touch the end date: got %v, want %v", *swept.EndDate, end)
	}
}

func TestRenewWithoutMonthsUsesCourseDuration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, fmt.Sprintf("renew-default-%d@example.com", time.Now().UnixNano()))
	course := createTestCourse(t, db, 2)

	subscriptionService := NewSubscriptionService(db)

	sub, err := subscriptionService.Create(ctx, user.ID, course.ID, 1)
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(sub) })

	// Let it lapse
	start := time.Now().Add(-90 * 24 * time.Hour)
	end := time.Now().Add(-24 * time.Hour)
	if err := db.Model(sub).Updates(map[string]interface{}{
		"status":     model.SubscriptionStatusExpired,
		"start_date": start,
		"end_date":   end,
	}).Error; err != nil {
		t.Fatalf("failed to expire subscription: %v", err)
	}

	// months=0 must fall back to the course duration, never produce an
	// active row whose window is already over.
	before := time.Now()
	renewed, err := subscriptionService.Renew(ctx, sub.ID, 0)
	if err != nil {
		t.Fatalf("failed to renew subscription: %v", err)
	}

	if renewed.Status != model.SubscriptionStatusActive {
		t.Errorf("expected the renewed subscription to be active, got %s", renewed.Status)
	}
	wantMin := AddMonths(before, course.DurationMonths)
	if renewed.EndDate == nil || renewed.EndDate.Before(wantMin) {
		t.Errorf("expected end date at least %v (course duration %d months), got %v",
			wantMin, course.DurationMonths, renewed.EndDate)
	}
}

func TestRenewStacksOnRemainingTime(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, fmt.Sprintf("renew-%d@example.com", time.Now().UnixNano()))
	course := createTestCourse(t, db, 1)

	subscriptionService := NewSubscriptionService(db)

	sub, err := subscriptionService.Create(ctx, user.ID, course.ID, 1)
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(sub) })

	oldEnd := *sub.EndDate

	renewed, err := subscriptionService.Renew(ctx, sub.ID, 1)
	if err != nil {
		t.Fatalf("failed to renew subscription: %v", err)
	}

	// The subscription is still active, so the month stacks on the old end
	// date instead of restarting from now.
	wantEnd := AddMonths(oldEnd, 1)
	if !renewed.EndDate.Equal(wantEnd) {
		t.Errorf("expected renewal to extend from the old end date: got %v, want %v",
			*renewed.EndDate, wantEnd)
	}
}
