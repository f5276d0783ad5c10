package stats

import (
	"time"

	"hostbook/internal/domain"
)

// BookingsOn returns the bookings active on date, in snapshot order.
func BookingsOn(date time.Time, bookings []domain.Booking) []domain.Booking {
	out := make([]domain.Booking, 0)
	for _, b := range bookings {
		if Matches(date, b.CheckIn, b.CheckOut) {
			out = append(out, b)
		}
	}
	return out
}

// HasBookingOn is the existence form of BookingsOn; it stops at the first hit.
func HasBookingOn(date time.Time, bookings []domain.Booking) bool {
	for _, b := range bookings {
		if Matches(date, b.CheckIn, b.CheckOut) {
			return true
		}
	}
	return false
}

// OccupiedDays lists, in ascending order, the days of the given month on
// which at least one booking is active.
func OccupiedDays(year int, month time.Month, bookings []domain.Booking) []time.Time {
	out := make([]time.Time, 0)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		if HasBookingOn(d, bookings) {
			out = append(out, d)
		}
	}
	return out
}
