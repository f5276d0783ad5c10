package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "hostbook/internal/adapters/http_server"
	redisad "hostbook/internal/adapters/redis"
	"hostbook/internal/app"
	"hostbook/internal/auth"
	"hostbook/internal/storage/memory"
)

type apiClient struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	st := memory.New()
	tokens := auth.NewTokenService("test-secret", "hostbook", time.Hour)
	s := httpserver.New()
	s.MountHandlers(&httpserver.Handlers{
		Q:      app.NewQueryService(st, st, redisad.Noop{}, time.Minute),
		C:      app.NewCommandService(st, st, redisad.Noop{}, nil),
		Auth:   auth.NewService(st, tokens),
		Tokens: tokens,
		Now:    func() time.Time { return time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC) },
	})
	srv := httptest.NewServer(s.Mux())
	t.Cleanup(srv.Close)
	return &apiClient{t: t, srv: srv}
}

func (c *apiClient) do(method, path string, body any, hdr ...string) (*http.Response, []byte) {
	c.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func (c *apiClient) login(email string) {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/v1/auth/register", map[string]string{"email": email, "password": "secret1"})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(body))
	var sess auth.Session
	require.NoError(c.t, json.Unmarshal(body, &sess))
	c.token = sess.Token
}

func (c *apiClient) createGuest(name string) string {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/v1/guests", map[string]string{"name": name, "email": name + "@example.com", "phone": "555"})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(body))
	var out struct {
		Message string `json:"message"`
		Guest   struct {
			ID string `json:"id"`
		} `json:"guest"`
	}
	require.NoError(c.t, json.Unmarshal(body, &out))
	assert.Equal(c.t, app.MsgGuestCreated, out.Message)
	return out.Guest.ID
}

func (c *apiClient) createBooking(guestID, in, out string, price float64) string {
	c.t.Helper()
	resp, body := c.do(http.MethodPost, "/v1/bookings", map[string]any{
		"guestId": guestID, "checkIn": in, "checkOut": out, "price": price,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(body))
	var res struct {
		Message string `json:"message"`
		Booking struct {
			ID     string `json:"id"`
			Nights int    `json:"nights"`
		} `json:"booking"`
	}
	require.NoError(c.t, json.Unmarshal(body, &res))
	assert.Equal(c.t, app.MsgBookingCreated, res.Message)
	return res.Booking.ID
}

func TestHealthz(t *testing.T) {
	c := newAPI(t)
	resp, body := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newAPI(t)
	resp, _ := c.do(http.MethodGet, "/v1/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))

	c.token = "garbage"
	resp, _ = c.do(http.MethodGet, "/v1/statistics", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_DuplicateAndBadLogin(t *testing.T) {
	c := newAPI(t)
	c.login("host@example.com")

	resp, _ := c.do(http.MethodPost, "/v1/auth/register", map[string]string{"email": "host@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": "host@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := c.do(http.MethodPost, "/v1/auth/register", map[string]string{"email": "x@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
}

func TestStatisticsFlow(t *testing.T) {
	c := newAPI(t)
	c.login("host@example.com")
	g := c.createGuest("ana")
	c.createBooking(g, "2024-03-01", "2024-03-03", 200)
	c.createBooking(g, "2024-03-10", "2024-03-11", 100)

	resp, body := c.do(http.MethodGet, "/v1/statistics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep struct {
		Summary struct {
			TotalBookings     int     `json:"totalBookings"`
			TotalGuests       int     `json:"totalGuests"`
			TotalRevenue      float64 `json:"totalRevenue"`
			AverageStayLength float64 `json:"averageStayLength"`
		} `json:"summary"`
		MonthlyRevenue []struct {
			Month        string  `json:"month"`
			BookingCount int     `json:"bookingCount"`
			RevenueSum   float64 `json:"revenueSum"`
		} `json:"monthlyRevenue"`
		LengthDistribution []struct {
			Label string `json:"label"`
			Count int    `json:"count"`
		} `json:"lengthDistribution"`
	}
	require.NoError(t, json.Unmarshal(body, &rep))
	assert.Equal(t, 2, rep.Summary.TotalBookings)
	assert.Equal(t, 1, rep.Summary.TotalGuests)
	assert.Equal(t, 300.0, rep.Summary.TotalRevenue)
	assert.Equal(t, 1.5, rep.Summary.AverageStayLength)
	require.Len(t, rep.MonthlyRevenue, 1)
	assert.Equal(t, "Mar 2024", rep.MonthlyRevenue[0].Month)
	assert.Equal(t, 2, rep.MonthlyRevenue[0].BookingCount)
	require.Len(t, rep.LengthDistribution, 5)
	assert.Equal(t, "1 day", rep.LengthDistribution[0].Label)
	assert.Equal(t, 1, rep.LengthDistribution[0].Count)
	assert.Equal(t, 1, rep.LengthDistribution[1].Count)

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	resp, _ = c.do(http.MethodGet, "/v1/statistics", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestCalendar(t *testing.T) {
	c := newAPI(t)
	c.login("host@example.com")
	g := c.createGuest("ana")
	id := c.createBooking(g, "2024-03-01", "2024-03-03", 200)

	// defaults to the handler's today, 2024-03-02
	resp, body := c.do(http.MethodGet, "/v1/calendar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var day struct {
		Date     string `json:"date"`
		Bookings []struct {
			ID string `json:"id"`
		} `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(body, &day))
	assert.Equal(t, "2024-03-02", day.Date)
	require.Len(t, day.Bookings, 1)
	assert.Equal(t, id, day.Bookings[0].ID)

	_, body = c.do(http.MethodGet, "/v1/calendar?date=2024-03-04", nil)
	require.NoError(t, json.Unmarshal(body, &day))
	assert.Empty(t, day.Bookings)
	assert.NotNil(t, day.Bookings)

	resp, _ = c.do(http.MethodGet, "/v1/calendar?date=03/04/2024", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = c.do(http.MethodGet, "/v1/calendar/2024/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var month struct {
		Days []string `json:"days"`
	}
	require.NoError(t, json.Unmarshal(body, &month))
	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, month.Days)

	resp, _ = c.do(http.MethodGet, "/v1/calendar/2024/13", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBookingValidationProblem(t *testing.T) {
	c := newAPI(t)
	c.login("host@example.com")
	g := c.createGuest("ana")

	resp, body := c.do(http.MethodPost, "/v1/bookings", map[string]any{
		"guestId": g, "checkIn": "2024-03-05", "checkOut": "2024-03-05", "price": 10,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var p struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Field  string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, app.MsgSaveBookingFailed, p.Title)
	assert.Equal(t, "Check-out date must be after check-in date", p.Detail)
	assert.Equal(t, "checkOut", p.Field)

	resp, _ = c.do(http.MethodPost, "/v1/bookings", map[string]any{
		"guestId": g, "checkIn": "tomorrow", "checkOut": "2024-03-05", "price": 10,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOwnersAreIsolated(t *testing.T) {
	a := newAPI(t)
	a.login("a@example.com")
	g := a.createGuest("ana")
	id := a.createBooking(g, "2024-03-01", "2024-03-03", 200)

	b := &apiClient{t: t, srv: a.srv}
	b.login("b@example.com")
	resp, _ := b.do(http.MethodGet, "/v1/bookings/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = b.do(http.MethodDelete, "/v1/bookings/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := b.do(http.MethodGet, "/v1/bookings", nil)
	assert.JSONEq(t, `[]`, string(body))
}

func TestBookingAndGuestCRUD(t *testing.T) {
	c := newAPI(t)
	c.login("host@example.com")
	g := c.createGuest("ana")
	id := c.createBooking(g, "2024-03-01", "2024-03-03", 200)

	resp, body := c.do(http.MethodPut, "/v1/bookings/"+id, map[string]any{
		"guestId": g, "checkIn": "2024-03-01", "checkOut": "2024-03-08", "price": 700, "notes": "extended",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), app.MsgBookingUpdated)
	assert.Contains(t, string(body), `"nights":7`)

	_, body = c.do(http.MethodGet, "/v1/bookings?q=EXTEND", nil)
	assert.Contains(t, string(body), id)
	_, body = c.do(http.MethodGet, "/v1/guests?q=ANA", nil)
	assert.Contains(t, string(body), g)

	resp, body = c.do(http.MethodDelete, "/v1/guests/"+g, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), app.MsgGuestDeleted)

	resp, _ = c.do(http.MethodGet, "/v1/bookings/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = c.do(http.MethodGet, "/v1/guests/"+g, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
