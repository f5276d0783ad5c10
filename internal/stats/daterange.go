// Package stats turns a booking snapshot into calendar occupancy, monthly
// revenue, stay-length distribution and summary figures.
//
// Every function is a pure computation over its arguments; nothing here
// performs I/O or keeps state between calls.
package stats

import (
	"time"

	"hostbook/internal/domain"
)

const secondsPerDay = 24 * 60 * 60

// Day normalizes t to midnight UTC of its own calendar day, dropping any
// time-of-day component.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Matches reports whether date falls within [checkIn, checkOut], both ends
// included, comparing calendar days only.
func Matches(date, checkIn, checkOut time.Time) bool {
	d := Day(date)
	return !d.Before(Day(checkIn)) && !d.After(Day(checkOut))
}

// StayLength is the whole-day difference checkOut - checkIn. It is zero or
// negative for inverted ranges; callers decide what that means.
// Counted on Unix seconds, which stays exact where time.Duration saturates.
func StayLength(b domain.Booking) int {
	return int((Day(b.CheckOut).Unix() - Day(b.CheckIn).Unix()) / secondsPerDay)
}
