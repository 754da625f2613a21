package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/metrics"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// Defaults for Options.
const (
	DefaultMaxAttempts   = 3
	DefaultLockWait      = 3 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// Request asks for a room over [CheckIn, CheckOut).  UserID comes from the
// already authenticated caller.
type Request struct {
	UserID   string
	RoomID   uint64
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// Options tunes a Controller.  Zero values pick the package defaults.
type Options struct {
	StoreTimeout  time.Duration
	LockWait      time.Duration
	MaxAttempts   int
	NotifyTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	if o.LockWait <= 0 {
		o.LockWait = DefaultLockWait
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.NotifyTimeout <= 0 {
		o.NotifyTimeout = DefaultNotifyTimeout
	}
	return o
}

// Controller admits bookings.  Every attempt holds the room's lock across
// check, pricing and commit, and the store re-checks overlap inside its
// write, so two overlapping requests can never both succeed.
type Controller struct {
	store    ReservationStore
	rooms    RoomCatalog
	checker  *Checker
	locker   Locker
	notifier Notifier
	opts     Options
	logger   *zerolog.Logger

	pending sync.WaitGroup
}

// NewController wires a Controller.  A nil locker falls back to an
// in-process KeyedMutex, a nil notifier drops confirmations.
func NewController(store ReservationStore, rooms RoomCatalog, locker Locker, notifier Notifier, opts Options, logger *zerolog.Logger) *Controller {
	if store == nil || rooms == nil {
		panic("nil store passed to NewController")
	}
	opts = opts.withDefaults()
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Controller{
		store:    store,
		rooms:    rooms,
		checker:  NewChecker(store, opts.StoreTimeout),
		locker:   locker,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// IsAvailable exposes the availability check for the public API.
func (c *Controller) IsAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	return c.checker.IsAvailable(ctx, roomID, checkIn, checkOut)
}

// CreateBooking validates req, then runs check-price-commit under the room
// lock, retrying a lost commit race at most MaxAttempts times in total.
// On any error no reservation is left behind.
func (c *Controller) CreateBooking(ctx context.Context, req Request) (model.Reservation, error) {
	stay, err := validate(req)
	if err != nil {
		metrics.IncAdmission(metrics.OutcomeInvalid)
		return model.Reservation{}, err
	}
	log := c.logger.With().Uint64("room_id", req.RoomID).Str("user_id", req.UserID).Stringer("stay", stay).Logger()

	var (
		res  model.Reservation
		room model.RoomWithHotel
	)
	for attempt := 1; ; attempt++ {
		res, room, err = c.attempt(ctx, req, stay)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrConcurrencyConflict) || attempt >= c.opts.MaxAttempts || ctx.Err() != nil {
			metrics.IncAdmission(outcome(err))
			log.Debug().Err(err).Int("attempt", attempt).Msg("booking rejected")
			return model.Reservation{}, err
		}
		metrics.IncCommitRetry()
		log.Debug().Err(err).Int("attempt", attempt).Msg("booking conflict, retrying")
	}

	metrics.IncAdmission(metrics.OutcomeCreated)
	log.Info().Uint64("reservation_id", res.ID).Int64("total_cents", res.TotalPriceCents).Msg("booking created")
	c.notify(ctx, Confirmation{Reservation: res, Room: room.Room, Hotel: room.Hotel})
	return res, nil
}

func (c *Controller) attempt(ctx context.Context, req Request, stay DateRange) (model.Reservation, model.RoomWithHotel, error) {
	lockCtx, cancel := context.WithTimeout(ctx, c.opts.LockWait)
	unlock, err := c.locker.Lock(lockCtx, req.RoomID)
	cancel()
	if err != nil {
		return model.Reservation{}, model.RoomWithHotel{}, err
	}
	defer unlock()

	free, err := c.checker.isAvailable(ctx, req.RoomID, stay)
	if err != nil {
		return model.Reservation{}, model.RoomWithHotel{}, err
	}
	if !free {
		return model.Reservation{}, model.RoomWithHotel{}, fmt.Errorf("%w: room %d is booked during %s", ErrRoomNotAvailable, req.RoomID, stay)
	}

	room, err := c.lookupRoom(ctx, req.RoomID)
	if err != nil {
		return model.Reservation{}, model.RoomWithHotel{}, err
	}
	if !room.IsAvailable {
		return model.Reservation{}, model.RoomWithHotel{}, fmt.Errorf("%w: room %d is not listed", ErrRoomNotAvailable, req.RoomID)
	}

	total, err := ComputeTotal(room.PricePerNightCents, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return model.Reservation{}, model.RoomWithHotel{}, err
	}

	res := model.Reservation{
		UserID:          req.UserID,
		RoomID:          req.RoomID,
		HotelID:         room.HotelID,
		CheckIn:         stay.CheckIn,
		CheckOut:        stay.CheckOut,
		Guests:          req.Guests,
		TotalPriceCents: total,
		PaymentStatus:   model.PaymentUnpaid,
		PaymentMethod:   model.PaymentMethodAtHotel,
	}
	if err := c.insert(ctx, &res); err != nil {
		return model.Reservation{}, model.RoomWithHotel{}, err
	}
	return res, room, nil
}

func (c *Controller) lookupRoom(ctx context.Context, roomID uint64) (model.RoomWithHotel, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.StoreTimeout)
	defer cancel()
	room, err := c.rooms.RoomWithHotel(ctx, roomID)
	if err != nil {
		return model.RoomWithHotel{}, storeError(err)
	}
	return room, nil
}

// insert runs the conditional write.  It is not tied to the request
// context: once started the commit finishes or fails on its own timeout.
func (c *Controller) insert(ctx context.Context, res *model.Reservation) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.StoreTimeout)
	defer cancel()
	if err := c.store.InsertIfAvailable(ctx, res); err != nil {
		return storeError(err)
	}
	return nil
}

func (c *Controller) notify(ctx context.Context, conf Confirmation) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.NotifyTimeout)
		defer cancel()
		if err := c.notifier.BookingCreated(nctx, conf); err != nil {
			c.logger.Warn().Err(err).Uint64("reservation_id", conf.Reservation.ID).Msg("booking notification failed")
		}
	}()
}

// Wait blocks until in-flight notifications have returned.
func (c *Controller) Wait() { c.pending.Wait() }

// MarkPaid records a payment confirmation.  It is idempotent: paying an
// already paid reservation returns it unchanged.
func (c *Controller) MarkPaid(ctx context.Context, reservationID uint64, method string) (model.Reservation, error) {
	if reservationID == 0 {
		return model.Reservation{}, fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	}
	if method == "" {
		method = model.PaymentMethodStripe
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.StoreTimeout)
	defer cancel()

	current, err := c.store.GetReservation(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, storeError(err)
	}
	if current.IsPaid() {
		return current, nil
	}
	res, err := c.store.MarkPaid(ctx, reservationID, method)
	if err != nil {
		return model.Reservation{}, storeError(err)
	}
	metrics.IncPaymentConfirmed()
	c.logger.Info().Uint64("reservation_id", reservationID).Str("method", method).Msg("reservation paid")
	return res, nil
}

// GuestBooking returns reservation id with its room and hotel when it
// belongs to userID.  Someone else's reservation is reported as
// ErrNotFound.
func (c *Controller) GuestBooking(ctx context.Context, userID string, id uint64) (Confirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.StoreTimeout)
	defer cancel()
	res, err := c.store.GetReservation(ctx, id)
	if err != nil {
		return Confirmation{}, storeError(err)
	}
	if res.UserID != userID {
		return Confirmation{}, fmt.Errorf("%w: reservation %d", ErrNotFound, id)
	}
	room, err := c.rooms.RoomWithHotel(ctx, res.RoomID)
	if err != nil {
		return Confirmation{}, storeError(err)
	}
	return Confirmation{Reservation: res, Room: room.Room, Hotel: room.Hotel}, nil
}

// UserBookings lists a guest's reservations, newest first.
func (c *Controller) UserBookings(ctx context.Context, userID string) ([]model.ReservationDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.StoreTimeout)
	defer cancel()
	list, err := c.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// Dashboard summarises an owner's hotel bookings.
type Dashboard struct {
	Hotel             model.Hotel               `json:"hotel"`
	TotalBookings     int                       `json:"total_bookings"`
	TotalRevenueCents int64                     `json:"total_revenue_cents"`
	Bookings          []model.ReservationDetail `json:"bookings"`
}

// HotelDashboard returns the booking summary for the hotel owned by
// ownerID, or ErrNotFound when the owner has no hotel.
func (c *Controller) HotelDashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.StoreTimeout)
	defer cancel()
	hotel, err := c.rooms.HotelByOwner(ctx, ownerID)
	if err != nil {
		return Dashboard{}, storeError(err)
	}
	list, err := c.store.ListByHotel(ctx, hotel.ID)
	if err != nil {
		return Dashboard{}, storeError(err)
	}
	d := Dashboard{Hotel: hotel, TotalBookings: len(list), Bookings: list}
	for _, b := range list {
		d.TotalRevenueCents += b.TotalPriceCents
	}
	return d, nil
}

func validate(req Request) (DateRange, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return DateRange{}, fmt.Errorf("%w: missing user", ErrInvalidRequest)
	}
	if req.RoomID == 0 {
		return DateRange{}, fmt.Errorf("%w: missing room", ErrInvalidRequest)
	}
	if req.Guests < 1 {
		return DateRange{}, fmt.Errorf("%w: guests must be at least 1", ErrInvalidRequest)
	}
	return NewDateRange(req.CheckIn, req.CheckOut)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotAvailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, ErrConcurrencyConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidRequest):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeStoreError
	}
}
