package mailer

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"carenest/config"
	"carenest/models"

	"gopkg.in/gomail.v2"
)

// Mailer sends the booking confirmation. Implementations are best-effort:
// the booking is already persisted when Send is attempted, and callers log
// failures instead of surfacing them.
type Mailer interface {
	SendBookingConfirmation(b *models.Booking) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.EmailFrom,
	}
}

func (m *SMTPMailer) SendBookingConfirmation(b *models.Booking) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", b.UserEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Booking received: %s", b.ServiceName))
	msg.SetBody("text/html", ConfirmationBody(b))

	return m.dialer.DialAndSend(msg)
}

// ConfirmationBody renders the HTML summary of a new booking.
func ConfirmationBody(b *models.Booking) string {
	name := b.UserName
	if name == "" {
		name = b.UserEmail
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "<h2>Hi %s,</h2>", html.EscapeString(name))
	body.WriteString("<p>We have received your booking. Our team will confirm it shortly.</p>")
	body.WriteString("<table>")
	row(&body, "Service", b.ServiceName)
	row(&body, "Duration", fmt.Sprintf("%g %s", b.DurationValue, b.DurationType))
	row(&body, "Location", location(b))
	row(&body, "Address", b.Address)
	row(&body, "Total cost", fmt.Sprintf("%.2f", b.TotalCost))
	row(&body, "Status", b.Status)
	body.WriteString("</table>")
	body.WriteString("<p>Thank you for choosing CareNest.</p>")
	return body.String()
}

func row(body *bytes.Buffer, label, value string) {
	fmt.Fprintf(body, "<tr><td><b>%s</b></td><td>%s</td></tr>", label, html.EscapeString(value))
}

func location(b *models.Booking) string {
	var parts []string
	for _, p := range []string{b.Area, b.City, b.District, b.Division} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
