package booking

import (
	"context"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Confirmation describes a booking that has just been committed.
type Confirmation struct {
	Reservation model.Reservation
	Room        model.Room
	Hotel       model.Hotel
}

// Notifier receives confirmations after commit.  The controller calls it
// off the request path; an error is logged and otherwise ignored.
type Notifier interface {
	BookingCreated(ctx context.Context, c Confirmation) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, c Confirmation) error

// BookingCreated calls f.
func (f NotifierFunc) BookingCreated(ctx context.Context, c Confirmation) error { return f(ctx, c) }

type nopNotifier struct{}

func (nopNotifier) BookingCreated(context.Context, Confirmation) error { return nil }
