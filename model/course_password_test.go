package model

import (
	"testing"
	"time"
)

func TestCoursePasswordIsRedeemableAt(t *testing.T) {
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		pw   CoursePassword
		want bool
	}{
		{"fresh password with no expiry", CoursePassword{}, true},
		{"fresh password expiring later", CoursePassword{ExpiresAt: &future}, true},
		{"already used", CoursePassword{Used: true}, false},
		{"expired", CoursePassword{ExpiresAt: &past}, false},
		// An expired password stays rejected no matter what the used flag says.
		{"expired and used", CoursePassword{Used: true, ExpiresAt: &past}, false},
		{"expired but never used", CoursePassword{Used: false, ExpiresAt: &past}, false},
		{"used with future expiry", CoursePassword{Used: true, ExpiresAt: &future}, false},
	}

	for _, tc := range cases {
		if got := tc.pw.IsRedeemableAt(now); got != tc.want {
			t.Errorf("%s: IsRedeemableAt = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCoursePasswordExpiryBoundary(t *testing.T) {
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	// Expiring exactly now is still redeemable; one second past is not.
	pw := CoursePassword{ExpiresAt: &now}
	if !pw.IsRedeemableAt(now) {
		t.Error("password expiring exactly now should still be redeemable")
	}
	if pw.IsRedeemableAt(now.Add(time.Second)) {
		t.Error("password should not be redeemable after its expiry")
	}
}
