package app

import (
	"strings"
	"time"

	"hostbook/internal/domain"
)

// BookingInput is the editable part of a booking.
type BookingInput struct {
	GuestID  string
	CheckIn  time.Time
	CheckOut time.Time
	Price    float64
	Notes    string
}

// GuestInput is the editable part of a guest.
type GuestInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// Validate applies the booking form rules; the first failure wins.
func (in BookingInput) Validate() error {
	switch {
	case strings.TrimSpace(in.GuestID) == "":
		return domain.Invalid("guestId", "Please select a guest")
	case in.CheckIn.IsZero() || in.CheckOut.IsZero():
		return domain.Invalid("checkIn", "Please select check-in and check-out dates")
	case !in.CheckOut.After(in.CheckIn):
		return domain.Invalid("checkOut", "Check-out date must be after check-in date")
	case in.Price <= 0:
		return domain.Invalid("price", "Price must be greater than zero")
	}
	return nil
}

func (in GuestInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.Invalid("name", "Please enter guest name")
	case strings.TrimSpace(in.Email) == "":
		return domain.Invalid("email", "Please enter guest email")
	case strings.TrimSpace(in.Phone) == "":
		return domain.Invalid("phone", "Please enter guest phone number")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
