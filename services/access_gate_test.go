package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vidcourse/api/model"
)

// The admin bypass and the profile approval gate decide before any
// subscription lookup, so they are testable without a database.

func TestAccessGateDeniesMissingUser(t *testing.T) {
	gate := NewAccessGate(nil)

	allowed, err := gate.CanViewCourse(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected a nil user to be denied")
	}
}

func TestAccessGateAdminBypass(t *testing.T) {
	gate := NewAccessGate(nil)

	// Admins skip both the approval gate and the subscription check,
	// approved or not.
	for _, approved := range []bool{true, false} {
		admin := &model.User{ID: 1, Role: "admin", Approved: approved}
		allowed, err := gate.CanViewCourse(context.Background(), admin, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Errorf("expected admin (approved=%v) to be allowed", approved)
		}
	}
}

func TestAccessGateDeniesUnapprovedStudent(t *testing.T) {
	gate := NewAccessGate(nil)

	// An unapproved profile is denied before the subscription is even
	// considered.
	student := &model.User{ID: 2, Role: "student", Approved: false}
	allowed, err := gate.CanViewCourse(context.Background(), student, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected an unapproved student to be denied")
	}
}

func TestAccessGateSubscriptionChecks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, fmt.Sprintf("gate-%d@example.com", time.Now().UnixNano()))
	course := createTestCourse(t, db, 1)

	gate := NewAccessGate(db)

	// Approved profile but no subscription at all
	allowed, err := gate.CanViewCourse(ctx, user, course.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected a student without a subscription to be denied")
	}

	subscriptionService := NewSubscriptionService(db)
	sub, err := subscriptionService.Create(ctx, user.ID, course.ID, 1)
	if err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(sub) })

	// Active and in-window
	allowed, err = gate.CanViewCourse(ctx, user, course.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected an active in-window subscription to grant access")
	}

	// Same row, evaluated past its end date: the gate must deny even
	// before the expiry sweep has flipped the status.
	afterEnd := sub.EndDate.Add(time.Hour)
	allowed, err = gate.canViewCourseAt(ctx, user, course.ID, afterEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected access to end with the subscription window")
	}

	// Pending rows never grant access
	if err := db.Model(sub).Update("status", model.SubscriptionStatusPending).Error; err != nil {
		t.Fatalf("failed to update subscription: %v", err)
	}
	allowed, err = gate.CanViewCourse(ctx, user, course.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Error("expected a pending subscription to be denied")
	}
}
