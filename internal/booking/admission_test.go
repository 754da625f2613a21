package booking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func bookingRequest(roomID uint64, in, out string) Request {
	return Request{UserID: "user_1", RoomID: roomID, CheckIn: day(in), CheckOut: day(out), Guests: 2}
}

func TestCreateBooking(t *testing.T) {
	store := newMemStore(testRoom(1, 12000))
	ctrl := NewController(store, store, nil, nil, Options{}, nil)

	res, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-13"))
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, int64(36000), res.TotalPriceCents)
	assert.Equal(t, model.PaymentUnpaid, res.PaymentStatus)
	assert.Equal(t, model.PaymentMethodAtHotel, res.PaymentMethod)
	assert.Equal(t, uint64(7), res.HotelID)
	assert.Equal(t, "user_1", res.UserID)
	assert.Equal(t, 1, store.count())
}

func TestCreateBookingRejectsInvalidRequestWithoutStoreAccess(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"same day", bookingRequest(1, "2024-01-10", "2024-01-10")},
		{"reversed", bookingRequest(1, "2024-01-12", "2024-01-10")},
		{"zero guests", Request{UserID: "u", RoomID: 1, CheckIn: day("2024-01-10"), CheckOut: day("2024-01-11"), Guests: 0}},
		{"negative guests", Request{UserID: "u", RoomID: 1, CheckIn: day("2024-01-10"), CheckOut: day("2024-01-11"), Guests: -2}},
		{"no user", Request{RoomID: 1, CheckIn: day("2024-01-10"), CheckOut: day("2024-01-11"), Guests: 1}},
		{"no room", Request{UserID: "u", CheckIn: day("2024-01-10"), CheckOut: day("2024-01-11"), Guests: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(testRoom(1, 100))
			ctrl := NewController(store, store, nil, nil, Options{}, nil)

			_, err := ctrl.CreateBooking(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Zero(t, store.calls.Load(), "store must not be touched")
		})
	}
}

func TestCreateBookingRoomNotAvailable(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	store.seed(1, day("2024-01-10"), day("2024-01-12"))
	ctrl := NewController(store, store, nil, nil, Options{}, nil)

	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-11", "2024-01-13"))
	assert.ErrorIs(t, err, ErrRoomNotAvailable)
	assert.Equal(t, 1, store.count())

	_, err = ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-12", "2024-01-14"))
	assert.NoError(t, err, "check-out day is free for the next guest")
}

func TestCreateBookingUnlistedRoom(t *testing.T) {
	room := testRoom(1, 100)
	room.IsAvailable = false
	store := newMemStore(room)
	ctrl := NewController(store, store, nil, nil, Options{}, nil)

	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-11"))
	assert.ErrorIs(t, err, ErrRoomNotAvailable)
	assert.Zero(t, store.count())
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	store := newMemStore()
	ctrl := NewController(store, store, nil, nil, Options{}, nil)

	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(42, "2024-01-10", "2024-01-11"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingNoPartialCommitOnStoreFailure(t *testing.T) {
	t.Run("insert fails", func(t *testing.T) {
		store := newMemStore(testRoom(1, 100))
		store.insertErr = errConnReset
		ctrl := NewController(store, store, nil, nil, Options{}, nil)

		_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Zero(t, store.count())
		assert.Equal(t, int64(1), store.insertCalls.Load(), "store failures are not retried")
	})
	t.Run("room lookup fails after check", func(t *testing.T) {
		store := newMemStore(testRoom(1, 100))
		store.roomErr = errConnReset
		ctrl := NewController(store, store, nil, nil, Options{}, nil)

		_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Zero(t, store.count())
		assert.Zero(t, store.insertCalls.Load())
	})
}

func TestCreateBookingStoreTimeout(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	store.onFind = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	ctrl := NewController(store, store, nil, nil, Options{StoreTimeout: 20 * time.Millisecond}, nil)

	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Zero(t, store.count())
}

func TestCreateBookingConflictRetriesAreBounded(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	store.insertErr = ErrConcurrencyConflict
	ctrl := NewController(store, store, nil, nil, Options{MaxAttempts: 3}, nil)

	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Equal(t, int64(3), store.insertCalls.Load())
	assert.Zero(t, store.count())
}

// Every booking goes through the same lock, so concurrent callers are
// decided one by one and only the first wins.
func TestCreateBookingConcurrentWithRoomLock(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	ctrl := NewController(store, store, NewKeyedMutex(), nil, Options{}, nil)

	results := raceBookings(t, ctrl, 16, func(i int) Request {
		if i%2 == 0 {
			return bookingRequest(1, "2024-01-10", "2024-01-12")
		}
		return bookingRequest(1, "2024-01-11", "2024-01-13")
	})

	assertSingleWinner(t, results)
	assert.Equal(t, 1, store.count())
}

// With the lock disabled both callers read an empty calendar before either
// inserts.  The conditional write rejects the loser, whose retry then sees
// the winner.
func TestCreateBookingConcurrentConditionalWrite(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	var barrier sync.WaitGroup
	barrier.Add(2)
	var finds atomic.Int64
	store.afterFind = func() {
		if finds.Add(1) <= 2 {
			barrier.Done()
			barrier.Wait()
		}
	}
	ctrl := NewController(store, store, noLock{}, nil, Options{}, nil)

	results := raceBookings(t, ctrl, 2, func(int) Request {
		return bookingRequest(1, "2024-01-10", "2024-01-12")
	})

	assertSingleWinner(t, results)
	for _, r := range results {
		if r.err != nil {
			assert.ErrorIs(t, r.err, ErrRoomNotAvailable, "loser retries and then sees the committed booking")
		}
	}
	assert.Equal(t, int64(2), store.insertCalls.Load(), "both callers reach the conditional write")
	assert.Equal(t, int64(3), finds.Load(), "only the loser checks again")
	assert.Equal(t, 1, store.count())
}

func TestCreateBookingLockWaitExpires(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	locker := NewKeyedMutex()
	unlock, err := locker.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer unlock()
	ctrl := NewController(store, store, locker, nil, Options{LockWait: 20 * time.Millisecond, MaxAttempts: 2}, nil)

	_, err = ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.Zero(t, store.calls.Load())
}

func TestCreateBookingNotifies(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	got := make(chan Confirmation, 1)
	notifier := NotifierFunc(func(_ context.Context, c Confirmation) error {
		got <- c
		return nil
	})
	ctrl := NewController(store, store, nil, notifier, Options{}, nil)

	res, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	require.NoError(t, err)

	select {
	case c := <-got:
		assert.Equal(t, res.ID, c.Reservation.ID)
		assert.Equal(t, uint64(1), c.Room.ID)
		assert.Equal(t, "Urbanza Suites", c.Hotel.Name)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestCreateBookingDoesNotWaitForNotifier(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	release := make(chan struct{})
	notifier := NotifierFunc(func(context.Context, Confirmation) error {
		<-release
		return errors.New("smtp down")
	})
	ctrl := NewController(store, store, nil, notifier, Options{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err, "delivery failure must not fail the booking")
	case <-time.After(time.Second):
		t.Fatal("booking blocked on notification")
	}
	close(release)
	ctrl.Wait()
	assert.Equal(t, 1, store.count())
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	ctrl := NewController(store, store, nil, nil, Options{}, nil)
	res, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	require.NoError(t, err)

	first, err := ctrl.MarkPaid(context.Background(), res.ID, model.PaymentMethodStripe)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, first.PaymentStatus)
	assert.Equal(t, model.PaymentMethodStripe, first.PaymentMethod)

	second, err := ctrl.MarkPaid(context.Background(), res.ID, model.PaymentMethodStripe)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, second.PaymentStatus)
	assert.Equal(t, 1, store.count())
}

func TestMarkPaidUnknownReservation(t *testing.T) {
	store := newMemStore()
	ctrl := NewController(store, store, nil, nil, Options{}, nil)

	_, err := ctrl.MarkPaid(context.Background(), 99, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ctrl.MarkPaid(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuestBooking(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	ctrl := NewController(store, store, nil, nil, Options{}, nil)
	res, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	require.NoError(t, err)

	conf, err := ctrl.GuestBooking(context.Background(), "user_1", res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, conf.Reservation.ID)
	assert.Equal(t, "Urbanza Suites", conf.Hotel.Name)
	assert.Equal(t, "Double Bed", conf.Room.RoomType)

	_, err = ctrl.GuestBooking(context.Background(), "user_2", res.ID)
	assert.ErrorIs(t, err, ErrNotFound, "other guests cannot see the booking")

	_, err = ctrl.GuestBooking(context.Background(), "user_1", 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHotelDashboard(t *testing.T) {
	store := newMemStore(testRoom(1, 10000), testRoom(2, 5000))
	ctrl := NewController(store, store, nil, nil, Options{}, nil)
	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	require.NoError(t, err)
	_, err = ctrl.CreateBooking(context.Background(), bookingRequest(2, "2024-01-10", "2024-01-11"))
	require.NoError(t, err)

	d, err := ctrl.HotelDashboard(context.Background(), "owner_1")
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalBookings)
	assert.Equal(t, int64(25000), d.TotalRevenueCents)
	require.Len(t, d.Bookings, 2)
	assert.Greater(t, d.Bookings[0].ID, d.Bookings[1].ID, "newest first")

	_, err = ctrl.HotelDashboard(context.Background(), "stranger")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserBookings(t *testing.T) {
	store := newMemStore(testRoom(1, 100))
	ctrl := NewController(store, store, nil, nil, Options{}, nil)
	_, err := ctrl.CreateBooking(context.Background(), bookingRequest(1, "2024-01-10", "2024-01-12"))
	require.NoError(t, err)

	list, err := ctrl.UserBookings(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = ctrl.UserBookings(context.Background(), "user_2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

type raceResult struct {
	res model.Reservation
	err error
}

func raceBookings(t *testing.T, ctrl *Controller, n int, req func(i int) Request) []raceResult {
	t.Helper()
	results := make([]raceResult, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := ctrl.CreateBooking(context.Background(), req(i))
			results[i] = raceResult{res: res, err: err}
		}(i)
	}
	close(start)
	wg.Wait()
	return results
}

func assertSingleWinner(t *testing.T, results []raceResult) {
	t.Helper()
	wins := 0
	for _, r := range results {
		if r.err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(r.err, ErrRoomNotAvailable) || errors.Is(r.err, ErrConcurrencyConflict), "unexpected error: %v", r.err)
	}
	assert.Equal(t, 1, wins)
}
