package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// memStore is an in-memory ReservationStore and RoomCatalog whose
// InsertIfAvailable re-checks overlap under its own mutex, the same
// guarantee the MySQL store gives with a room row lock.
type memStore struct {
	mu           sync.Mutex
	nextID       uint64
	reservations []model.Reservation
	rooms        map[uint64]model.RoomWithHotel

	calls       atomic.Int64
	insertCalls atomic.Int64

	onFind    func(ctx context.Context) error
	afterFind func()
	insertErr error
	roomErr   error
}

func newMemStore(rooms ...model.RoomWithHotel) *memStore {
	s := &memStore{rooms: make(map[uint64]model.RoomWithHotel)}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func testRoom(id uint64, rate int64) model.RoomWithHotel {
	return model.RoomWithHotel{
		Room: model.Room{
			ID:                 id,
			HotelID:            7,
			RoomType:           "Double Bed",
			PricePerNightCents: rate,
			IsAvailable:        true,
		},
		Hotel: model.Hotel{ID: 7, Name: "Urbanza Suites", Address: "Main Road 123", OwnerID: "owner_1"},
	}
}

func (s *memStore) seed(roomID uint64, checkIn, checkOut time.Time) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := model.Reservation{
		ID: s.nextID, UserID: "seed", RoomID: roomID, HotelID: 7,
		CheckIn: checkIn, CheckOut: checkOut, Guests: 1,
		PaymentStatus: model.PaymentUnpaid, CreatedAt: time.Now(),
	}
	s.reservations = append(s.reservations, r)
	return r
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *memStore) overlapping(roomID uint64, stay DateRange) []model.Reservation {
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.RoomID == roomID && stay.Overlaps(DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}) {
			out = append(out, r)
		}
	}
	return out
}

func (s *memStore) FindOverlapping(ctx context.Context, roomID uint64, stay DateRange) ([]model.Reservation, error) {
	s.calls.Add(1)
	if s.onFind != nil {
		if err := s.onFind(ctx); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	found := s.overlapping(roomID, stay)
	s.mu.Unlock()
	if s.afterFind != nil {
		s.afterFind()
	}
	return found, nil
}

func (s *memStore) InsertIfAvailable(_ context.Context, res *model.Reservation) error {
	s.calls.Add(1)
	s.insertCalls.Add(1)
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.overlapping(res.RoomID, DateRange{CheckIn: res.CheckIn, CheckOut: res.CheckOut})) > 0 {
		return ErrConcurrencyConflict
	}
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	s.reservations = append(s.reservations, *res)
	return nil
}

func (s *memStore) GetReservation(_ context.Context, id uint64) (model.Reservation, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, ErrNotFound
}

func (s *memStore) MarkPaid(_ context.Context, id uint64, method string) (model.Reservation, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			if !s.reservations[i].IsPaid() {
				s.reservations[i].PaymentStatus = model.PaymentPaid
				s.reservations[i].PaymentMethod = method
			}
			return s.reservations[i], nil
		}
	}
	return model.Reservation{}, ErrNotFound
}

func (s *memStore) list(keep func(model.Reservation) bool) []model.ReservationDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ReservationDetail
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, model.ReservationDetail{Reservation: r})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]model.ReservationDetail, error) {
	s.calls.Add(1)
	return s.list(func(r model.Reservation) bool { return r.UserID == userID }), nil
}

func (s *memStore) ListByHotel(_ context.Context, hotelID uint64) ([]model.ReservationDetail, error) {
	s.calls.Add(1)
	return s.list(func(r model.Reservation) bool { return r.HotelID == hotelID }), nil
}

func (s *memStore) RoomWithHotel(_ context.Context, roomID uint64) (model.RoomWithHotel, error) {
	s.calls.Add(1)
	if s.roomErr != nil {
		return model.RoomWithHotel{}, s.roomErr
	}
	r, ok := s.rooms[roomID]
	if !ok {
		return model.RoomWithHotel{}, ErrNotFound
	}
	return r, nil
}

func (s *memStore) HotelByOwner(_ context.Context, ownerID string) (model.Hotel, error) {
	s.calls.Add(1)
	for _, r := range s.rooms {
		if r.Hotel.OwnerID == ownerID {
			return r.Hotel, nil
		}
	}
	return model.Hotel{}, ErrNotFound
}

// noLock lets every caller through so only the store's conditional write
// stands between two racing bookings.
type noLock struct{}

func (noLock) Lock(context.Context, uint64) (func(), error) { return func() {}, nil }

var errConnReset = errors.New("connection reset by peer")

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}
