package stats

import (
	"sort"
	"time"

	"hostbook/internal/domain"
)

// MonthLabelLayout renders a month key, e.g. "Mar 2024".
const MonthLabelLayout = "Jan 2006"

type MonthRevenue struct {
	Month        string  `json:"month"`
	BookingCount int     `json:"bookingCount"`
	RevenueSum   float64 `json:"revenueSum"`

	start time.Time // first of month; ordering key
}

// Start returns the first day of the month the entry aggregates.
func (m MonthRevenue) Start() time.Time { return m.start }

// MonthlyRevenue groups bookings by check-in month and sums their prices.
// Entries are ordered chronologically; the check-out month plays no part.
func MonthlyRevenue(bookings []domain.Booking) []MonthRevenue {
	groups := make(map[time.Time]*MonthRevenue)
	for _, b := range bookings {
		y, m, _ := b.CheckIn.Date()
		key := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		g, ok := groups[key]
		if !ok {
			g = &MonthRevenue{Month: key.Format(MonthLabelLayout), start: key}
			groups[key] = g
		}
		g.BookingCount++
		g.RevenueSum += b.Price
	}

	out := make([]MonthRevenue, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}
