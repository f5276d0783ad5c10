package mailer

import (
	"context"

	"github.com/rs/zerolog"

	"hostbook/internal/domain"
)

// LogNotifier writes the confirmation it would have sent to the log.
type LogNotifier struct{ L zerolog.Logger }

func (n LogNotifier) SendBookingConfirmation(_ context.Context, bc domain.BookingConfirmation) error {
	p := templateParams(bc)
	n.L.Info().
		Str("to", p["to_email"]).
		Str("guest", p["guest_name"]).
		Str("guest_email", p["guest_email"]).
		Str("check_in", p["check_in_date"]).
		Str("check_out", p["check_out_date"]).
		Str("total", p["price"]).
		Msg("booking confirmation (not sent: mailer disabled)")
	return nil
}
