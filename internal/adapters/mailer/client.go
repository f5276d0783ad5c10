// internal/adapters/mailer/client.go
package mailer

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hostbook/internal/adapters/observability"
	"hostbook/internal/domain"
)

// Options identify the account and template on the EmailJS-style API.
type Options struct {
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string // optional private key
}

type Client struct {
	base string
	hc   *http.Client
	opts Options
	rl   *rate.Limiter
}

func New(base string, opts Options, rps int) (*Client, error) {
	if opts.ServiceID == "" || opts.TemplateID == "" || opts.PublicKey == "" {
		return nil, fmt.Errorf("service id, template id and public key are required")
	}
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		opts: opts,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrRejected     = errors.New("mailer: request rejected")
	ErrUnauthorized = errors.New("mailer: unauthorized")
)

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendBookingConfirmation emails the host about a newly created booking.
func (c *Client) SendBookingConfirmation(ctx context.Context, bc domain.BookingConfirmation) error {
	body, err := json.Marshal(sendRequest{
		ServiceID:      c.opts.ServiceID,
		TemplateID:     c.opts.TemplateID,
		UserID:         c.opts.PublicKey,
		AccessToken:    c.opts.AccessToken,
		TemplateParams: templateParams(bc),
	})
	if err != nil {
		return err
	}
	return c.post(ctx, c.base+"/email/send", body)
}

// ---- Internals ----

const maxAttempts = 4

// outcome of a single POST. retry is set for 429, transient 5xx and transport
// errors; wait carries the server's Retry-After when it sent one.
type outcome struct {
	err   error
	retry bool
	wait  time.Duration
}

// post delivers body, waiting on the limiter before every attempt.
func (c *Client) post(ctx context.Context, url string, body []byte) error {
	var last outcome
	for i := 0; i < maxAttempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		last = c.do(ctx, url, body)
		if !last.retry || i == maxAttempts-1 {
			break
		}
		wait := last.wait
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return ctx.Err()
		}
	}
	return last.err
}

// do performs one POST and classifies the response.
func (c *Client) do(ctx context.Context, url string, body []byte) outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return outcome{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hostbook/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("mailer", "send", 0, time.Since(start))
		if ctx.Err() != nil {
			return outcome{err: ctx.Err()}
		}
		return outcome{err: err, retry: true}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("mailer", "send", resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return outcome{}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return outcome{err: ErrUnauthorized}
	case code == http.StatusTooManyRequests || code >= 500:
		return outcome{err: fmt.Errorf("mailer: remote %d", code), retry: true, wait: retryAfter(resp.Header.Get("Retry-After"))}
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return outcome{err: fmt.Errorf("%w: status %d: %s", ErrRejected, code, strings.TrimSpace(string(msg)))}
	}
}

// sleepCtx waits for d; false means ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter reads a Retry-After value in seconds or as an HTTP date; 0 when unusable.
func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}

// backoff doubles from 200ms per attempt and adds up to half of that as jitter.
func backoff(attempt int) time.Duration {
	d := 200 * time.Millisecond << attempt
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return d
	}
	return d + d*time.Duration(b[0])/510
}
