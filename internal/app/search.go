package app

import (
	"strings"

	"hostbook/internal/domain"
)

// FilterBookings keeps bookings whose guest name, notes or guest email contain
// term case-insensitively, or whose guest phone contains it verbatim.
// An empty term keeps everything.
func FilterBookings(bs []domain.Booking, term string) []domain.Booking {
	out := make([]domain.Booking, 0, len(bs))
	if term == "" {
		return append(out, bs...)
	}
	low := strings.ToLower(term)
	for _, b := range bs {
		if bookingMatches(b, term, low) {
			out = append(out, b)
		}
	}
	return out
}

func bookingMatches(b domain.Booking, term, low string) bool {
	if b.Notes != nil && strings.Contains(strings.ToLower(*b.Notes), low) {
		return true
	}
	if b.Guest == nil {
		return false
	}
	return strings.Contains(strings.ToLower(b.Guest.Name), low) ||
		strings.Contains(strings.ToLower(b.Guest.Email), low) ||
		strings.Contains(b.Guest.Phone, term)
}

// FilterGuests applies the same rules to the guest list: name, email and
// notes case-insensitively, phone verbatim.
func FilterGuests(gs []domain.Guest, term string) []domain.Guest {
	out := make([]domain.Guest, 0, len(gs))
	if term == "" {
		return append(out, gs...)
	}
	low := strings.ToLower(term)
	for _, g := range gs {
		switch {
		case strings.Contains(strings.ToLower(g.Name), low),
			strings.Contains(strings.ToLower(g.Email), low),
			strings.Contains(g.Phone, term),
			g.Notes != nil && strings.Contains(strings.ToLower(*g.Notes), low):
			out = append(out, g)
		}
	}
	return out
}
