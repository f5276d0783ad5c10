package httpserver

import (
	"time"

	"hostbook/internal/app"
	"hostbook/internal/domain"
	"hostbook/internal/stats"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type bookingView struct {
	ID        string           `json:"id"`
	GuestID   string           `json:"guestId"`
	CheckIn   string           `json:"checkIn"`
	CheckOut  string           `json:"checkOut"`
	Nights    int              `json:"nights"`
	Price     float64          `json:"price"`
	Notes     *string          `json:"notes"`
	Guest     *domain.GuestRef `json:"guest,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func toBookingView(b domain.Booking) bookingView {
	return bookingView{
		ID:        b.ID,
		GuestID:   b.GuestID,
		CheckIn:   b.CheckIn.Format(DateLayout),
		CheckOut:  b.CheckOut.Format(DateLayout),
		Nights:    stats.StayLength(b),
		Price:     b.Price,
		Notes:     b.Notes,
		Guest:     b.Guest,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toBookingViews(bs []domain.Booking) []bookingView {
	out := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingView(b))
	}
	return out
}

type guestView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toGuestView(g domain.Guest) guestView {
	return guestView{ID: g.ID, Name: g.Name, Email: g.Email, Phone: g.Phone, Notes: g.Notes, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func toGuestViews(gs []domain.Guest) []guestView {
	out := make([]guestView, 0, len(gs))
	for _, g := range gs {
		out = append(out, toGuestView(g))
	}
	return out
}

type dashboardView struct {
	TotalBookings int           `json:"totalBookings"`
	TotalGuests   int           `json:"totalGuests"`
	TotalRevenue  float64       `json:"totalRevenue"`
	Recent        []bookingView `json:"recent"`
}

func toDashboardView(d app.Dashboard) dashboardView {
	return dashboardView{
		TotalBookings: d.TotalBookings,
		TotalGuests:   d.TotalGuests,
		TotalRevenue:  d.TotalRevenue,
		Recent:        toBookingViews(d.Recent),
	}
}

// ---- request bodies ----

type bookingRequest struct {
	GuestID  string  `json:"guestId"`
	CheckIn  string  `json:"checkIn"`
	CheckOut string  `json:"checkOut"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes"`
}

// input parses the wire dates. Empty dates stay zero and are reported by validation.
func (r bookingRequest) input() (app.BookingInput, error) {
	in := app.BookingInput{GuestID: r.GuestID, Price: r.Price, Notes: r.Notes}
	var err error
	if in.CheckIn, err = parseDate("checkIn", r.CheckIn); err != nil {
		return in, err
	}
	if in.CheckOut, err = parseDate("checkOut", r.CheckOut); err != nil {
		return in, err
	}
	return in, nil
}

type guestRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (r guestRequest) input() app.GuestInput {
	return app.GuestInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Notes: r.Notes}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.Invalid(field, field+" must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}
