// Package mail renders and sends booking confirmation emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
)

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": money,
	"date":  func(t time.Time) string { return t.Format("Mon, 02 Jan 2006") },
}).Parse(`<div style="font-family: Arial, sans-serif;">
  <h2>Your Booking Details</h2>
  <p>Dear {{.Name}},</p>
  <p>Thank you for your booking! Here are your details:</p>
  <ul>
    <li><strong>Booking ID:</strong> {{.Event.ReservationID}}</li>
    <li><strong>Hotel Name:</strong> {{.Event.HotelName}}</li>
    <li><strong>Location:</strong> {{.Event.HotelAddress}}</li>
    <li><strong>Room:</strong> {{.Event.RoomType}}</li>
    <li><strong>Check-in:</strong> {{date .Event.CheckIn}}</li>
    <li><strong>Check-out:</strong> {{date .Event.CheckOut}}</li>
    <li><strong>Nights:</strong> {{.Event.Nights}}</li>
    <li><strong>Guests:</strong> {{.Event.Guests}}</li>
    <li><strong>Booking Amount:</strong> {{money .Event.TotalPriceCents}}</li>
    <li><strong>Payment:</strong> {{.Event.PaymentMethod}}</li>
  </ul>
  <p>We look forward to welcoming you!</p>
  <p>If you need to make any changes, feel free to contact us.</p>
</div>`))

func money(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// Render returns the subject and HTML body of a confirmation.
func Render(to model.User, ev queue.BookingCreatedEvent) (string, string, error) {
	name := to.Username
	if name == "" {
		name = "Guest"
	}
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, struct {
		Name  string
		Event queue.BookingCreatedEvent
	}{name, ev}); err != nil {
		return "", "", err
	}
	return "Hotel Booking Details", buf.String(), nil
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Mailer sends confirmations through one SMTP server.  It implements
// queue.Mailer.
type Mailer struct {
	from string
	send func(...*gomail.Message) error
}

var _ queue.Mailer = (*Mailer)(nil)

// NewMailer returns a Mailer that dials cfg for every send.
func NewMailer(cfg SMTPConfig) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return &Mailer{from: cfg.From, send: d.DialAndSend}
}

// SendBookingConfirmation renders and sends the confirmation to the guest.
func (m *Mailer) SendBookingConfirmation(ctx context.Context, to model.User, ev queue.BookingCreatedEvent) error {
	subject, body, err := Render(to, ev)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.send(msg)
}
