package services

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"Jan 31 plus one month clamps to Feb 28", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"Jan 31 plus one month in a leap year clamps to Feb 29", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"Mar 31 plus one month clamps to Apr 30", date(2025, time.March, 31), 1, date(2025, time.April, 30)},
		{"mid-month is unaffected", date(2025, time.January, 15), 1, date(2025, time.February, 15)},
		{"plain month addition", date(2025, time.March, 10), 3, date(2025, time.June, 10)},
		{"crosses a year boundary", date(2025, time.November, 20), 3, date(2026, time.February, 20)},
		{"Oct 31 plus twelve months lands on Oct 31 next year", date(2025, time.October, 31), 12, date(2026, time.October, 31)},
		{"Jan 31 plus thirteen months clamps to Feb 28 next year", date(2025, time.January, 31), 13, date(2026, time.February, 28)},
	}

	for _, tc := range cases {
		got := AddMonths(tc.start, tc.months)
		if !got.Equal(tc.want) {
			t.Errorf("%s: AddMonths(%v, %d) = %v, want %v", tc.name, tc.start, tc.months, got, tc.want)
		}
	}
}

func TestAddMonthsPreservesTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.January, 31, 23, 59, 58, 0, time.UTC)
	got := AddMonths(start, 1)

	if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 58 {
		t.Errorf("AddMonths changed the time of day: got %v", got)
	}
	if got.Day() != 28 || got.Month() != time.February {
		t.Errorf("AddMonths(%v, 1) = %v, want Feb 28", start, got)
	}
}

func TestRenewalBase(t *testing.T) {
	now := date(2025, time.June, 15)

	// No end date yet: renew from now
	if got := RenewalBase(now, nil); !got.Equal(now) {
		t.Errorf("RenewalBase(now, nil) = %v, want %v", got, now)
	}

	// Expired subscription: the old end date is in the past, renew from now
	expired := date(2025, time.January, 1)
	if got := RenewalBase(now, &expired); !got.Equal(now) {
		t.Errorf("RenewalBase with past end date = %v, want %v", got, now)
	}

	// Active subscription: stack the renewal on top of the remaining time
	future := date(2025, time.December, 1)
	if got := RenewalBase(now, &future); !got.Equal(future) {
		t.Errorf("RenewalBase with future end date = %v, want %v", got, future)
	}
}
