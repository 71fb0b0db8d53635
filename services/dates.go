package services

import "time"

// AddMonths advances t by the given number of calendar months, clamping the
// day to the last day of the target month. Jan 31 + 1 month is Feb 28 (or 29
// in a leap year), never Mar 2. time.AddDate does not clamp, so it cannot be
// used for subscription windows.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Normalize target year/month
	targetMonth := int(month) + months
	targetYear := year + (targetMonth-1)/12
	targetMonth = (targetMonth-1)%12 + 1
	if targetMonth <= 0 {
		targetMonth += 12
		targetYear--
	}

	last := lastDayOfMonth(targetYear, time.Month(targetMonth))
	if day > last {
		day = last
	}

	return time.Date(targetYear, time.Month(targetMonth), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// lastDayOfMonth returns the number of days in the given month
func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RenewalBase returns the instant a renewal extends from: the current end
// date when it is still in the future, otherwise now. Renewing an active
// subscription must never shorten it.
func RenewalBase(now time.Time, endDate *time.Time) time.Time {
	if endDate != nil && endDate.After(now) {
		return *endDate
	}
	return now
}
