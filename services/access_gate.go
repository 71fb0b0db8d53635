package services

import (
	"context"
	"errors"
	"time"

	"github.com/vidcourse/api/model"
	"gorm.io/gorm"
)

// AccessGate decides whether a user may view a course's videos. This is the
// authoritative server-side boundary; any client-side checks are UX only.
type AccessGate struct {
	db *gorm.DB
}

// NewAccessGate creates a new access gate
func NewAccessGate(db *gorm.DB) *AccessGate {
	return &AccessGate{db: db}
}

// CanViewCourse reports whether the user may view the given course's videos
// right now. Admins always may; students need an approved profile plus an
// active in-window subscription for the course.
func (g *AccessGate) CanViewCourse(ctx context.Context, user *model.User, courseID uint) (bool, error) {
	return g.canViewCourseAt(ctx, user, courseID, time.Now())
}

func (g *AccessGate) canViewCourseAt(ctx context.Context, user *model.User, courseID uint, now time.Time) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	// Platform-level gate, layered on top of per-course subscriptions
	if !user.Approved {
		return false, nil
	}

	var sub model.Subscription
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", user.ID, courseID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return sub.IsActiveAt(now), nil
}
