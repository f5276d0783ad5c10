package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hostbook/internal/app"
	"hostbook/internal/auth"
	"hostbook/internal/domain"
)

// Authenticator registers and logs in hosts.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
}

type Handlers struct {
	Q      *app.QueryService
	C      *app.CommandService
	Auth   Authenticator
	Tokens TokenValidator
	Now    func() time.Time
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

const maxBodyBytes = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/auth/register", h.register)
	s.mux.Post("/v1/auth/login", h.login)

	s.mux.Group(func(r chi.Router) {
		r.Use(Authenticate(h.Tokens))

		r.Get("/v1/dashboard", h.dashboard)
		r.Get("/v1/statistics", h.statistics)
		r.Get("/v1/calendar", h.calendarDay)
		r.Get("/v1/calendar/{year}/{month}", h.calendarMonth)

		r.Get("/v1/bookings", h.listBookings)
		r.Post("/v1/bookings", h.createBooking)
		r.Get("/v1/bookings/{id}", h.getBooking)
		r.Put("/v1/bookings/{id}", h.updateBooking)
		r.Delete("/v1/bookings/{id}", h.deleteBooking)

		r.Get("/v1/guests", h.listGuests)
		r.Post("/v1/guests", h.createGuest)
		r.Get("/v1/guests/{id}", h.getGuest)
		r.Put("/v1/guests/{id}", h.updateGuest)
		r.Delete("/v1/guests/{id}", h.deleteGuest)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses titled with the failed action.
func writeError(w http.ResponseWriter, r *http.Request, title string, err error) {
	p := problem{Type: "about:blank", Title: title}
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		p.Status, p.Detail, p.Field = http.StatusBadRequest, ve.Message, ve.Field
	case errors.Is(err, domain.ErrInvalid):
		p.Status, p.Detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		p.Status, p.Detail = http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		p.Status, p.Detail = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrConflict):
		p.Status, p.Detail = http.StatusConflict, "already exists"
	default:
		p.Status, p.Detail = http.StatusInternalServerError, "internal error"
		log.Error().Err(err).Str("path", r.URL.Path).Msg(title)
	}
	writeProblemBody(w, p)
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable writes a GET response with a weak ETag, answering 304 when the client has it.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("body", "malformed JSON body: "+err.Error())
	}
	return nil
}

func principal(r *http.Request) domain.Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}

func (h *Handlers) today() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// ---- auth ----

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "Registration failed", err)
		return
	}
	sess, err := h.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "Registration failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, "Login failed", err)
		return
	}
	sess, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "Login failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// ---- reports ----

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Q.Dashboard(r.Context(), principal(r).OwnerID)
	if err != nil {
		writeError(w, r, app.MsgLoadBookingsFailed, err)
		return
	}
	writeCacheable(w, r, toDashboardView(d))
}

func (h *Handlers) statistics(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Q.Statistics(r.Context(), principal(r).OwnerID)
	if err != nil {
		writeError(w, r, app.MsgLoadBookingsFailed, err)
		return
	}
	writeCacheable(w, r, rep)
}

func (h *Handlers) calendarDay(w http.ResponseWriter, r *http.Request) {
	day := h.today()
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := parseDate("date", s)
		if err != nil {
			writeError(w, r, app.MsgLoadBookingsFailed, err)
			return
		}
		day = t
	}
	bs, err := h.Q.BookingsOn(r.Context(), principal(r).OwnerID, day)
	if err != nil {
		writeError(w, r, app.MsgLoadBookingsFailed, err)
		return
	}
	writeCacheable(w, r, map[string]any{
		"date":     day.Format(DateLayout),
		"bookings": toBookingViews(bs),
	})
}

func (h *Handlers) calendarMonth(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil || year < 1 || year > 9999 || month < 1 || month > 12 {
		writeProblem(w, http.StatusBadRequest, "Invalid month", "year must be 1-9999 and month 1-12")
		return
	}
	days, err := h.Q.OccupiedDays(r.Context(), principal(r).OwnerID, year, time.Month(month))
	if err != nil {
		writeError(w, r, app.MsgLoadBookingsFailed, err)
		return
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(DateLayout))
	}
	writeCacheable(w, r, map[string]any{"year": year, "month": month, "days": out})
}

// ---- bookings ----

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Q.ListBookings(r.Context(), principal(r).OwnerID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, app.MsgLoadBookingsFailed, err)
		return
	}
	writeCacheable(w, r, toBookingViews(bs))
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Q.GetBooking(r.Context(), principal(r).OwnerID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, app.MsgLoadBookingsFailed, err)
		return
	}
	writeCacheable(w, r, toBookingView(b))
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	in, err := h.bookingInput(w, r)
	if err != nil {
		writeError(w, r, app.MsgSaveBookingFailed, err)
		return
	}
	b, err := h.C.CreateBooking(r.Context(), principal(r), in)
	if err != nil {
		writeError(w, r, app.MsgSaveBookingFailed, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": app.MsgBookingCreated, "booking": toBookingView(b)})
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	in, err := h.bookingInput(w, r)
	if err != nil {
		writeError(w, r, app.MsgSaveBookingFailed, err)
		return
	}
	b, err := h.C.UpdateBooking(r.Context(), principal(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, app.MsgSaveBookingFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": app.MsgBookingUpdated, "booking": toBookingView(b)})
}

func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.C.DeleteBooking(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, app.MsgDeleteBookingFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": app.MsgBookingDeleted})
}

func (h *Handlers) bookingInput(w http.ResponseWriter, r *http.Request) (app.BookingInput, error) {
	var req bookingRequest
	if err := decode(w, r, &req); err != nil {
		return app.BookingInput{}, err
	}
	return req.input()
}

// ---- guests ----

func (h *Handlers) listGuests(w http.ResponseWriter, r *http.Request) {
	gs, err := h.Q.ListGuests(r.Context(), principal(r).OwnerID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, app.MsgLoadGuestsFailed, err)
		return
	}
	writeCacheable(w, r, toGuestViews(gs))
}

func (h *Handlers) getGuest(w http.ResponseWriter, r *http.Request) {
	g, err := h.Q.GetGuest(r.Context(), principal(r).OwnerID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, app.MsgLoadGuestsFailed, err)
		return
	}
	writeCacheable(w, r, toGuestView(g))
}

func (h *Handlers) createGuest(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, app.MsgSaveGuestFailed, err)
		return
	}
	g, err := h.C.CreateGuest(r.Context(), principal(r), req.input())
	if err != nil {
		writeError(w, r, app.MsgSaveGuestFailed, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": app.MsgGuestCreated, "guest": toGuestView(g)})
}

func (h *Handlers) updateGuest(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, app.MsgSaveGuestFailed, err)
		return
	}
	g, err := h.C.UpdateGuest(r.Context(), principal(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, app.MsgSaveGuestFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": app.MsgGuestUpdated, "guest": toGuestView(g)})
}

func (h *Handlers) deleteGuest(w http.ResponseWriter, r *http.Request) {
	if err := h.C.DeleteGuest(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, app.MsgDeleteGuestFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": app.MsgGuestDeleted})
}
