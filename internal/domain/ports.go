package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	// Read paths
	ListBookings(ctx context.Context, owner OwnerID) ([]Booking, error)
	GetBooking(ctx context.Context, owner OwnerID, id string) (Booking, error)

	// Write paths
	CreateBooking(ctx context.Context, b Booking) error
	UpdateBooking(ctx context.Context, b Booking) error
	DeleteBooking(ctx context.Context, owner OwnerID, id string) error
}

type GuestRepository interface {
	// Read paths
	ListGuests(ctx context.Context, owner OwnerID) ([]Guest, error)
	GetGuest(ctx context.Context, owner OwnerID, id string) (Guest, error)
	CountGuests(ctx context.Context, owner OwnerID) (int, error)

	// Write paths
	CreateGuest(ctx context.Context, g Guest) error
	UpdateGuest(ctx context.Context, g Guest) error
	DeleteGuest(ctx context.Context, owner OwnerID, id string) error // cascades bookings
}

type OwnerRepository interface {
	CreateOwner(ctx context.Context, o Owner) error
	GetOwnerByEmail(ctx context.Context, email string) (Owner, error)
	ListOwnerIDs(ctx context.Context) ([]OwnerID, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error
}

// BookingConfirmation is what the host receives after a booking is created.
type BookingConfirmation struct {
	HostEmail  string
	GuestName  string
	GuestEmail string
	CheckIn    time.Time
	CheckOut   time.Time
	Price      float64
}

// Snapshot is the immutable input of one aggregation pass.
type Snapshot struct {
	Bookings   []Booking `json:"bookings"`
	GuestCount int       `json:"guestCount"`
}
