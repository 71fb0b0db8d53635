package model

import (
	"testing"
	"time"
)

func TestSubscriptionIsActiveAt(t *testing.T) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	active := Subscription{
		Status:    SubscriptionStatusActive,
		StartDate: &start,
		EndDate:   &end,
	}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"inside the window", time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), true},
		{"exactly at start", start, true},
		{"exactly at end", end, true},
		{"before the window", start.Add(-time.Second), false},
		{"after the window", end.Add(time.Second), false},
	}

	for _, tc := range cases {
		if got := active.IsActiveAt(tc.now); got != tc.want {
			t.Errorf("%s: IsActiveAt(%v) = %v, want %v", tc.name, tc.now, got, tc.want)
		}
	}
}

func TestSubscriptionIsActiveAtRequiresActiveStatus(t *testing.T) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	for _, status := range []SubscriptionStatus{SubscriptionStatusPending, SubscriptionStatusExpired} {
		sub := Subscription{Status: status, StartDate: &start, EndDate: &end}
		if sub.IsActiveAt(now) {
			t.Errorf("status %s should never be active, even inside the window", status)
		}
	}
}

func TestSubscriptionIsActiveAtRequiresWindow(t *testing.T) {
	now := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)

	// Pending subscriptions have no window yet; an active row without one is
	// malformed and must not grant access.
	sub := Subscription{Status: SubscriptionStatusActive}
	if sub.IsActiveAt(now) {
		t.Error("active subscription without a window should not be active")
	}

	sub.StartDate = &now
	if sub.IsActiveAt(now) {
		t.Error("active subscription without an end date should not be active")
	}
}
