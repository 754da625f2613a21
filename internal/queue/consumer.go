package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/metrics"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// Mailer delivers a rendered booking confirmation.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, to model.User, ev BookingCreatedEvent) error
}

// Recipients resolves the guest of a booking.
type Recipients interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// errPermanent marks messages that can never succeed.  They are rejected
// without requeue; everything else is requeued once the broker redelivers.
var errPermanent = errors.New("permanent failure")

// Consumer reads booking.created messages and emails the guest.
type Consumer struct {
	URL        string
	Queue      string
	Prefetch   int
	Mailer     Mailer
	Recipients Recipients
	Logger     zerolog.Logger
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes until
// ctx is cancelled.  Broker failures trigger a reconnect with exponential
// backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn().Err(err).Dur("retry_in", backoff).Msg("booking consumer: dial failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn().Err(err).Msg("booking consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	prefetch := c.Prefetch
	if prefetch <= 0 {
		prefetch = 50
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		c.Logger.Warn().Err(err).Msg("booking consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue(), true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.queue(), "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		err := c.handleMessage(ctx, d.Body)
		switch {
		case err == nil:
			_ = d.Ack(false)
		case errors.Is(err, errPermanent):
			c.Logger.Error().Err(err).Msg("booking consumer: dropping message")
			_ = d.Nack(false, false)
		default:
			c.Logger.Warn().Err(err).Bool("redelivered", d.Redelivered).Msg("booking consumer: handle failed")
			// One retry through the broker, then give up.
			_ = d.Nack(false, !d.Redelivered)
		}
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) queue() string {
	if c.Queue == "" {
		return BookingCreatedQueue
	}
	return c.Queue
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", errPermanent, err)
	}
	if !ev.Valid() {
		return fmt.Errorf("%w: incomplete event for reservation %d", errPermanent, ev.ReservationID)
	}
	user, err := c.Recipients.GetByID(ctx, ev.UserID)
	if errors.Is(err, booking.ErrNotFound) {
		return fmt.Errorf("%w: recipient %s: %v", errPermanent, ev.UserID, err)
	}
	if err != nil {
		return fmt.Errorf("recipient %s: %w", ev.UserID, err)
	}
	if user.Email == "" {
		return fmt.Errorf("%w: user %s has no email", errPermanent, ev.UserID)
	}
	if err := c.Mailer.SendBookingConfirmation(ctx, user, ev); err != nil {
		metrics.IncNotification(metrics.NotificationMailFailed)
		return fmt.Errorf("send confirmation: %w", err)
	}
	metrics.IncNotification(metrics.NotificationMailed)
	c.Logger.Info().Uint64("reservation_id", ev.ReservationID).Msg("booking confirmation sent")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
