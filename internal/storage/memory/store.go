// Package memory keeps owners, guests and bookings in process memory with the
// same owner scoping and ordering rules as the MySQL repository.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hostbook/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	owners   map[domain.OwnerID]domain.Owner
	guests   map[string]domain.Guest
	bookings map[string]domain.Booking
	now      func() time.Time
}

func New() *Store {
	return &Store{
		owners:   make(map[domain.OwnerID]domain.Owner),
		guests:   make(map[string]domain.Guest),
		bookings: make(map[string]domain.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ---- owners ----

func (s *Store) CreateOwner(_ context.Context, o domain.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.owners {
		if strings.EqualFold(existing.Email, o.Email) {
			return domain.ErrConflict
		}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.owners[o.ID] = o
	return nil
}

func (s *Store) GetOwnerByEmail(_ context.Context, email string) (domain.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.owners {
		if strings.EqualFold(o.Email, email) {
			return o, nil
		}
	}
	return domain.Owner{}, domain.ErrNotFound
}

func (s *Store) ListOwnerIDs(_ context.Context) ([]domain.OwnerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OwnerID, 0, len(s.owners))
	for id := range s.owners {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---- guests ----

func (s *Store) ListGuests(_ context.Context, owner domain.OwnerID) ([]domain.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Guest, 0)
	for _, g := range s.guests {
		if g.OwnerID == owner {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetGuest(_ context.Context, owner domain.OwnerID, id string) (domain.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.guests[id]
	if !ok || g.OwnerID != owner {
		return domain.Guest{}, domain.ErrNotFound
	}
	return g, nil
}

func (s *Store) CountGuests(_ context.Context, owner domain.OwnerID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.guests {
		if g.OwnerID == owner {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateGuest(_ context.Context, g domain.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.guests[g.ID]; ok {
		return domain.ErrConflict
	}
	now := s.now()
	g.CreatedAt, g.UpdatedAt = now, now
	s.guests[g.ID] = g
	return nil
}

func (s *Store) UpdateGuest(_ context.Context, g domain.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.guests[g.ID]
	if !ok || cur.OwnerID != g.OwnerID {
		return domain.ErrNotFound
	}
	g.CreatedAt, g.UpdatedAt = cur.CreatedAt, s.now()
	s.guests[g.ID] = g
	return nil
}

func (s *Store) DeleteGuest(_ context.Context, owner domain.OwnerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guests[id]
	if !ok || g.OwnerID != owner {
		return domain.ErrNotFound
	}
	delete(s.guests, id)
	for bid, b := range s.bookings {
		if b.GuestID == id {
			delete(s.bookings, bid)
		}
	}
	return nil
}

// ---- bookings ----

func (s *Store) ListBookings(_ context.Context, owner domain.OwnerID) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Booking, 0)
	for _, b := range s.bookings {
		if b.OwnerID == owner {
			out = append(out, s.withGuest(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.Before(out[j].CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetBooking(_ context.Context, owner domain.OwnerID, id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok || b.OwnerID != owner {
		return domain.Booking{}, domain.ErrNotFound
	}
	return s.withGuest(b), nil
}

func (s *Store) CreateBooking(_ context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.guests[b.GuestID]; !ok || g.OwnerID != b.OwnerID {
		return domain.ErrNotFound
	}
	if _, ok := s.bookings[b.ID]; ok {
		return domain.ErrConflict
	}
	now := s.now()
	b.Guest, b.CreatedAt, b.UpdatedAt = nil, now, now
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) UpdateBooking(_ context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok || cur.OwnerID != b.OwnerID {
		return domain.ErrNotFound
	}
	if g, ok := s.guests[b.GuestID]; !ok || g.OwnerID != b.OwnerID {
		return domain.ErrNotFound
	}
	b.Guest, b.CreatedAt, b.UpdatedAt = nil, cur.CreatedAt, s.now()
	s.bookings[b.ID] = b
	return nil
}

func (s *Store) DeleteBooking(_ context.Context, owner domain.OwnerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.OwnerID != owner {
		return domain.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// withGuest attaches the guest projection; callers hold the lock.
func (s *Store) withGuest(b domain.Booking) domain.Booking {
	if g, ok := s.guests[b.GuestID]; ok {
		b.Guest = &domain.GuestRef{Name: g.Name, Email: g.Email, Phone: g.Phone}
	}
	return b
}
