package stats

import (
	"math"

	"hostbook/internal/domain"
)

type Summary struct {
	TotalBookings     int     `json:"totalBookings"`
	TotalGuests       int     `json:"totalGuests"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageStayLength float64 `json:"averageStayLength"`
}

// Summarize computes headline figures. guestCount comes from the guest
// collection and is passed through untouched.
func Summarize(bookings []domain.Booking, guestCount int) Summary {
	s := Summary{TotalBookings: len(bookings), TotalGuests: guestCount}
	if len(bookings) == 0 {
		return s
	}
	totalDays := 0
	for _, b := range bookings {
		s.TotalRevenue += b.Price
		totalDays += StayLength(b)
	}
	s.AverageStayLength = round1(float64(totalDays) / float64(len(bookings)))
	return s
}

// round1 rounds half away from zero to one decimal place.
func round1(f float64) float64 { return math.Round(f*10) / 10 }
