package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Amenities and image URLs
// are stored as JSON arrays.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo given a DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomWithHotelColumns = `rm.id, rm.hotel_id, rm.room_type, rm.price_per_night_cents, rm.amenities, rm.images,
    rm.is_available, rm.rating, rm.reviews_count, rm.created_at, rm.updated_at,
    h.id, h.name, h.address, h.contact, h.city, h.owner_id, h.created_at, h.updated_at`

const roomWithHotelFrom = ` FROM rooms rm JOIN hotels h ON h.id = rm.hotel_id`

func scanRoomWithHotel(s rowScanner) (model.RoomWithHotel, error) {
	var (
		rw                model.RoomWithHotel
		amenities, images []byte
	)
	err := s.Scan(
		&rw.ID, &rw.HotelID, &rw.RoomType, &rw.PricePerNightCents, &amenities, &images,
		&rw.IsAvailable, &rw.Rating, &rw.ReviewsCount, &rw.CreatedAt, &rw.UpdatedAt,
		&rw.Hotel.ID, &rw.Hotel.Name, &rw.Hotel.Address, &rw.Hotel.Contact, &rw.Hotel.City,
		&rw.Hotel.OwnerID, &rw.Hotel.CreatedAt, &rw.Hotel.UpdatedAt,
	)
	if err != nil {
		return model.RoomWithHotel{}, err
	}
	if rw.Amenities, err = decodeStrings(amenities); err != nil {
		return model.RoomWithHotel{}, err
	}
	if rw.Images, err = decodeStrings(images); err != nil {
		return model.RoomWithHotel{}, err
	}
	return rw, nil
}

// decodeStrings reads a nullable JSON array column.
func decodeStrings(b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeStrings(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

// Create inserts a room and populates its ID.  Rating and review count
// take their defaults.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	amenities, err := encodeStrings(room.Amenities)
	if err != nil {
		return err
	}
	images, err := encodeStrings(room.Images)
	if err != nil {
		return err
	}
	const q = `INSERT INTO rooms (hotel_id, room_type, price_per_night_cents, amenities, images, is_available, rating)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.HotelID, room.RoomType, room.PricePerNightCents, amenities, images, true, model.DefaultRoomRating)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	room.IsAvailable = true
	room.Rating = model.DefaultRoomRating
	return nil
}

// RoomWithHotel loads a room joined with its hotel.
func (r *RoomRepo) RoomWithHotel(ctx context.Context, roomID uint64) (model.RoomWithHotel, error) {
	q := `SELECT ` + roomWithHotelColumns + roomWithHotelFrom + ` WHERE rm.id = ?`
	rw, err := scanRoomWithHotel(r.db.QueryRowContext(ctx, q, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoomWithHotel{}, ErrRoomNotFound
	}
	return rw, err
}

func (r *RoomRepo) list(ctx context.Context, where string, args ...any) ([]model.RoomWithHotel, error) {
	q := `SELECT ` + roomWithHotelColumns + roomWithHotelFrom + ` WHERE ` + where + ` ORDER BY rm.created_at DESC, rm.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomWithHotel, 0)
	for rows.Next() {
		rw, err := scanRoomWithHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

// ListListed returns rooms whose owners have them listed, newest first.
func (r *RoomRepo) ListListed(ctx context.Context) ([]model.RoomWithHotel, error) {
	return r.list(ctx, `rm.is_available = TRUE`)
}

// ListByOwner returns every room of the hotel owned by ownerID.
func (r *RoomRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.RoomWithHotel, error) {
	return r.list(ctx, `h.owner_id = ?`, ownerID)
}

// ToggleAvailability flips a room's listing flag if the room belongs to
// ownerID and returns the updated room.  ErrRoomNotFound for unknown rooms,
// ErrForbidden for rooms of another owner.
func (r *RoomRepo) ToggleAvailability(ctx context.Context, roomID uint64, ownerID string) (model.RoomWithHotel, error) {
	rw, err := r.RoomWithHotel(ctx, roomID)
	if err != nil {
		return model.RoomWithHotel{}, err
	}
	if rw.Hotel.OwnerID != ownerID {
		return model.RoomWithHotel{}, ErrForbidden
	}
	const q = `UPDATE rooms rm JOIN hotels h ON h.id = rm.hotel_id
        SET rm.is_available = NOT rm.is_available
        WHERE rm.id = ? AND h.owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, roomID, ownerID)
	if err != nil {
		return model.RoomWithHotel{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.RoomWithHotel{}, ErrRoomNotFound
	}
	rw.IsAvailable = !rw.IsAvailable
	return rw, nil
}
