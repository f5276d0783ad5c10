package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"hostbook/internal/adapters/observability"
	"hostbook/internal/domain"
	"hostbook/internal/stats"
)

// RecentLimit is how many upcoming bookings the dashboard lists.
const RecentLimit = 5

type QueryService struct {
	bookings domain.BookingRepository
	guests   domain.GuestRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(b domain.BookingRepository, g domain.GuestRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{bookings: b, guests: g, cache: c, cacheTTL: ttl}
}

// Snapshot returns the owner's bookings and guest count, from cache when possible.
// Cache errors fall through to the repositories.
func (s *QueryService) Snapshot(ctx context.Context, owner domain.OwnerID) (domain.Snapshot, error) {
	ctx, span := observability.Tracer().Start(ctx, "QueryService.Snapshot",
		trace.WithAttributes(attribute.String("owner.id", string(owner))))
	defer span.End()

	// the generation must be read before loading
	gen, cacheable := generation(ctx, s.cache, owner)
	key := snapshotKey(owner, gen)
	var snap domain.Snapshot
	if cacheable {
		if ok, err := s.cache.Get(ctx, key, &snap); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return snap, nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bs, err := s.bookings.ListBookings(gctx, owner)
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		snap.Bookings = bs
		return nil
	})
	g.Go(func() error {
		n, err := s.guests.CountGuests(gctx, owner)
		if err != nil {
			return fmt.Errorf("count guests: %w", err)
		}
		snap.GuestCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return domain.Snapshot{}, err
	}
	if snap.Bookings == nil {
		snap.Bookings = []domain.Booking{}
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, snap, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return snap, nil
}

type Dashboard struct {
	TotalBookings int              `json:"totalBookings"`
	TotalGuests   int              `json:"totalGuests"`
	TotalRevenue  float64          `json:"totalRevenue"`
	Recent        []domain.Booking `json:"recent"`
}

func (s *QueryService) Dashboard(ctx context.Context, owner domain.OwnerID) (Dashboard, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	start := time.Now()
	sum := stats.Summarize(snap.Bookings, snap.GuestCount)
	recent := snap.Bookings
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	observability.ObserveAggregation("dashboard", time.Since(start))
	return Dashboard{
		TotalBookings: sum.TotalBookings,
		TotalGuests:   sum.TotalGuests,
		TotalRevenue:  sum.TotalRevenue,
		Recent:        append([]domain.Booking(nil), recent...),
	}, nil
}

func (s *QueryService) Statistics(ctx context.Context, owner domain.OwnerID) (stats.Report, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return stats.Report{}, err
	}
	start := time.Now()
	r := stats.Build(snap)
	observability.ObserveAggregation("statistics", time.Since(start))
	return r, nil
}

// BookingsOn lists the bookings occupying the given calendar day.
func (s *QueryService) BookingsOn(ctx context.Context, owner domain.OwnerID, date time.Time) ([]domain.Booking, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out := stats.BookingsOn(date, snap.Bookings)
	observability.ObserveAggregation("calendar_day", time.Since(start))
	return out, nil
}

// OccupiedDays lists the days of a month that have at least one booking.
func (s *QueryService) OccupiedDays(ctx context.Context, owner domain.OwnerID, year int, month time.Month) ([]time.Time, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	out := stats.OccupiedDays(year, month, snap.Bookings)
	observability.ObserveAggregation("calendar_month", time.Since(start))
	return out, nil
}

func (s *QueryService) ListBookings(ctx context.Context, owner domain.OwnerID, search string) ([]domain.Booking, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	return FilterBookings(snap.Bookings, search), nil
}

func (s *QueryService) GetBooking(ctx context.Context, owner domain.OwnerID, id string) (domain.Booking, error) {
	return s.bookings.GetBooking(ctx, owner, id)
}

func (s *QueryService) ListGuests(ctx context.Context, owner domain.OwnerID, search string) ([]domain.Guest, error) {
	gen, cacheable := generation(ctx, s.cache, owner)
	key := guestsKey(owner, gen)
	var gs []domain.Guest
	if cacheable {
		if ok, err := s.cache.Get(ctx, key, &gs); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			return FilterGuests(gs, search), nil
		}
	}
	gs, err := s.guests.ListGuests(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	// repositories already order by name; keep the contract for any implementation
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].Name < gs[j].Name })
	if cacheable {
		if err := s.cache.Set(ctx, key, gs, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return FilterGuests(gs, search), nil
}

func (s *QueryService) GetGuest(ctx context.Context, owner domain.OwnerID, id string) (domain.Guest, error) {
	return s.guests.GetGuest(ctx, owner, id)
}
