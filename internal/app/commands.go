package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hostbook/internal/adapters/observability"
	"hostbook/internal/domain"
	"hostbook/internal/stats"
)

// Outcome messages shown to the host after a command.
const (
	MsgBookingCreated = "Booking created successfully"
	MsgBookingUpdated = "Booking updated successfully"
	MsgBookingDeleted = "Booking deleted successfully"
	MsgGuestCreated   = "Guest created successfully"
	MsgGuestUpdated   = "Guest updated successfully"
	MsgGuestDeleted   = "Guest deleted successfully"

	MsgSaveBookingFailed   = "Failed to save booking"
	MsgDeleteBookingFailed = "Failed to delete booking"
	MsgSaveGuestFailed     = "Failed to save guest"
	MsgDeleteGuestFailed   = "Failed to delete guest"
	MsgLoadBookingsFailed  = "Failed to load bookings"
	MsgLoadGuestsFailed    = "Failed to load guests"
)

const notifyTimeout = 5 * time.Second

type CommandService struct {
	bookings domain.BookingRepository
	guests   domain.GuestRepository
	cache    domain.Cache
	notifier domain.Notifier
	newID    func() string
}

func NewCommandService(b domain.BookingRepository, g domain.GuestRepository, c domain.Cache, n domain.Notifier) *CommandService {
	return &CommandService{
		bookings: b,
		guests:   g,
		cache:    c,
		notifier: n,
		newID:    func() string { return uuid.NewString() },
	}
}

func (s *CommandService) CreateBooking(ctx context.Context, p domain.Principal, in BookingInput) (domain.Booking, error) {
	ctx, span := s.start(ctx, "CommandService.CreateBooking", p.OwnerID)
	defer span.End()

	if err := in.Validate(); err != nil {
		return domain.Booking{}, err
	}
	g, err := s.guests.GetGuest(ctx, p.OwnerID, in.GuestID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("guest %s: %w", in.GuestID, err)
	}
	b := domain.Booking{
		ID:       s.newID(),
		OwnerID:  p.OwnerID,
		GuestID:  g.ID,
		CheckIn:  stats.Day(in.CheckIn),
		CheckOut: stats.Day(in.CheckOut),
		Price:    in.Price,
		Notes:    optional(in.Notes),
	}
	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		span.RecordError(err)
		return domain.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	s.invalidate(ctx, p.OwnerID)

	b.Guest = &domain.GuestRef{Name: g.Name, Email: g.Email, Phone: g.Phone}
	s.notify(ctx, p, b)
	return b, nil
}

func (s *CommandService) UpdateBooking(ctx context.Context, p domain.Principal, id string, in BookingInput) (domain.Booking, error) {
	ctx, span := s.start(ctx, "CommandService.UpdateBooking", p.OwnerID)
	defer span.End()

	if err := in.Validate(); err != nil {
		return domain.Booking{}, err
	}
	cur, err := s.bookings.GetBooking(ctx, p.OwnerID, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("booking %s: %w", id, err)
	}
	g, err := s.guests.GetGuest(ctx, p.OwnerID, in.GuestID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("guest %s: %w", in.GuestID, err)
	}
	cur.GuestID = g.ID
	cur.CheckIn = stats.Day(in.CheckIn)
	cur.CheckOut = stats.Day(in.CheckOut)
	cur.Price = in.Price
	cur.Notes = optional(in.Notes)
	if err := s.bookings.UpdateBooking(ctx, cur); err != nil {
		span.RecordError(err)
		return domain.Booking{}, fmt.Errorf("update booking: %w", err)
	}
	s.invalidate(ctx, p.OwnerID)
	cur.Guest = &domain.GuestRef{Name: g.Name, Email: g.Email, Phone: g.Phone}
	return cur, nil
}

func (s *CommandService) DeleteBooking(ctx context.Context, p domain.Principal, id string) error {
	ctx, span := s.start(ctx, "CommandService.DeleteBooking", p.OwnerID)
	defer span.End()

	if err := s.bookings.DeleteBooking(ctx, p.OwnerID, id); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	s.invalidate(ctx, p.OwnerID)
	return nil
}

func (s *CommandService) CreateGuest(ctx context.Context, p domain.Principal, in GuestInput) (domain.Guest, error) {
	ctx, span := s.start(ctx, "CommandService.CreateGuest", p.OwnerID)
	defer span.End()

	if err := in.Validate(); err != nil {
		return domain.Guest{}, err
	}
	g := domain.Guest{
		ID:      s.newID(),
		OwnerID: p.OwnerID,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Notes:   optional(in.Notes),
	}
	if err := s.guests.CreateGuest(ctx, g); err != nil {
		span.RecordError(err)
		return domain.Guest{}, fmt.Errorf("create guest: %w", err)
	}
	s.invalidate(ctx, p.OwnerID)
	return g, nil
}

func (s *CommandService) UpdateGuest(ctx context.Context, p domain.Principal, id string, in GuestInput) (domain.Guest, error) {
	ctx, span := s.start(ctx, "CommandService.UpdateGuest", p.OwnerID)
	defer span.End()

	if err := in.Validate(); err != nil {
		return domain.Guest{}, err
	}
	cur, err := s.guests.GetGuest(ctx, p.OwnerID, id)
	if err != nil {
		return domain.Guest{}, fmt.Errorf("guest %s: %w", id, err)
	}
	cur.Name, cur.Email, cur.Phone = in.Name, in.Email, in.Phone
	cur.Notes = optional(in.Notes)
	if err := s.guests.UpdateGuest(ctx, cur); err != nil {
		span.RecordError(err)
		return domain.Guest{}, fmt.Errorf("update guest: %w", err)
	}
	s.invalidate(ctx, p.OwnerID)
	return cur, nil
}

// DeleteGuest removes the guest and, through the repository, all of their bookings.
func (s *CommandService) DeleteGuest(ctx context.Context, p domain.Principal, id string) error {
	ctx, span := s.start(ctx, "CommandService.DeleteGuest", p.OwnerID)
	defer span.End()

	if err := s.guests.DeleteGuest(ctx, p.OwnerID, id); err != nil {
		return fmt.Errorf("delete guest %s: %w", id, err)
	}
	s.invalidate(ctx, p.OwnerID)
	return nil
}

func (s *CommandService) start(ctx context.Context, name string, owner domain.OwnerID) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name,
		trace.WithAttributes(attribute.String("owner.id", string(owner))))
}

// invalidate moves the owner to a new cache generation and drops the views
// cached under the previous one. Runs after the repository write.
func (s *CommandService) invalidate(ctx context.Context, owner domain.OwnerID) {
	prev, known := generation(ctx, s.cache, owner)
	if err := bumpGeneration(ctx, s.cache, owner, s.newID()); err != nil {
		log.Warn().Err(err).Str("owner", string(owner)).Msg("cache invalidation failed")
	}
	if !known {
		return
	}
	for _, k := range []string{snapshotKey(owner, prev), guestsKey(owner, prev)} {
		if err := s.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache delete failed")
		}
	}
}

// notify sends the host a confirmation. It never fails the command.
func (s *CommandService) notify(ctx context.Context, p domain.Principal, b domain.Booking) {
	if s.notifier == nil || p.Email == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	err := s.notifier.SendBookingConfirmation(ctx, domain.BookingConfirmation{
		HostEmail:  p.Email,
		GuestName:  b.Guest.Name,
		GuestEmail: b.Guest.Email,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Price:      b.Price,
	})
	observability.ObserveNotification(err)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("booking_id", b.ID).Msg("booking confirmation not sent")
	}
}
