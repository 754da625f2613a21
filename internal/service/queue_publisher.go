// Package service publishes domain events to RabbitMQ.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/metrics"
	"github.com/iliyamo/hotel-booking/internal/queue"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Publisher sends booking.created events.  It implements booking.Notifier.
// The connection is opened on first use and reopened after the broker
// drops it.
type Publisher struct {
	url   string
	queue string
	log   zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	dial func() (channel, error)
}

var _ booking.Notifier = (*Publisher)(nil)

// NewPublisher returns a publisher for queueName on the broker at url.
func NewPublisher(url, queueName string, logger zerolog.Logger) *Publisher {
	if queueName == "" {
		queueName = queue.BookingCreatedQueue
	}
	p := &Publisher{url: url, queue: queueName, log: logger}
	p.dial = p.dialAMQP
	return p
}

func (p *Publisher) dialAMQP() (channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn = conn
	return ch, nil
}

// BookingCreated publishes the confirmation as a persistent JSON message.
func (p *Publisher) BookingCreated(ctx context.Context, c booking.Confirmation) error {
	msg, err := encode(queue.NewBookingCreatedEvent(c))
	if err != nil {
		return err
	}
	if err := p.publish(ctx, msg); err != nil {
		metrics.IncNotification(metrics.NotificationPublishFailed)
		p.log.Error().Err(err).Uint64("reservation_id", c.Reservation.ID).Msg("publish booking.created failed")
		return err
	}
	metrics.IncNotification(metrics.NotificationPublished)
	return nil
}

func (p *Publisher) publish(ctx context.Context, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.dial()
		if err != nil {
			return err
		}
		p.ch = ch
	}
	err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if errors.Is(err, amqp.ErrClosed) {
		p.ch = nil
	}
	return err
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

func encode(ev queue.BookingCreatedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         queue.BookingCreatedQueue,
		Body:         body,
	}, nil
}
