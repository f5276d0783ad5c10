package mailer

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"hostbook/internal/domain"
)

const longDate = "Monday, January 2, 2006"

var printer = message.NewPrinter(language.AmericanEnglish)

// formatPrice renders an amount the way the confirmation template expects, e.g. "$1,234.50".
func formatPrice(p float64) string { return printer.Sprintf("$%.2f", p) }

func templateParams(bc domain.BookingConfirmation) map[string]string {
	return map[string]string{
		"to_email":       bc.HostEmail,
		"guest_name":     bc.GuestName,
		"guest_email":    bc.GuestEmail,
		"check_in_date":  bc.CheckIn.Format(longDate),
		"check_out_date": bc.CheckOut.Format(longDate),
		"price":          formatPrice(bc.Price),
	}
}
