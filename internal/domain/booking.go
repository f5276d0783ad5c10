package domain

import "time"

// OwnerID identifies the host that owns a set of guests and bookings.
// Every storage query is scoped by one.
type OwnerID string

type Booking struct {
	ID        string    `json:"id"`
	OwnerID   OwnerID   `json:"-"`
	GuestID   string    `json:"guestId"`
	CheckIn   time.Time `json:"checkIn"`  // calendar date, midnight UTC
	CheckOut  time.Time `json:"checkOut"` // calendar date, midnight UTC
	Price     float64   `json:"price"`
	Notes     *string   `json:"notes,omitempty"`
	Guest     *GuestRef `json:"guest,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GuestRef is the guest projection joined onto a booking listing.
type GuestRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
