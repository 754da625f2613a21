package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// HotelRepo persists hotels.  An owner has at most one hotel, enforced by
// a unique key on owner_id.
type HotelRepo struct {
	db *sql.DB
}

// NewHotelRepo constructs a HotelRepo given a DB handle.
func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// Create registers h and promotes its owner to the hotelOwner role in one
// transaction.  ErrHotelExists if the owner already has a hotel,
// ErrUserNotFound if the owner has never synced a profile.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO hotels (name, address, contact, city, owner_id) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, h.Name, h.Address, h.Contact, h.City, h.OwnerID)
	if err != nil {
		switch {
		case isDuplicate(err):
			return ErrHotelExists
		case isForeignKeyViolation(err):
			return ErrUserNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	// fk_hotels_owner already proved the user exists.
	if _, err := tx.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, model.RoleHotelOwner, h.OwnerID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	h.ID = uint64(id)
	return nil
}

// HotelByOwner returns the hotel owned by ownerID.
func (r *HotelRepo) HotelByOwner(ctx context.Context, ownerID string) (model.Hotel, error) {
	var h model.Hotel
	const q = `SELECT id, name, address, contact, city, owner_id, created_at, updated_at FROM hotels WHERE owner_id = ?`
	err := r.db.QueryRowContext(ctx, q, ownerID).
		Scan(&h.ID, &h.Name, &h.Address, &h.Contact, &h.City, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Hotel{}, ErrHotelNotFound
	}
	return h, err
}

// Catalog combines room and hotel lookups into a booking.RoomCatalog.
type Catalog struct {
	*RoomRepo
	*HotelRepo
}

var _ booking.RoomCatalog = Catalog{}

// NewCatalog bundles the room and hotel repositories.
func NewCatalog(rooms *RoomRepo, hotels *HotelRepo) Catalog {
	return Catalog{RoomRepo: rooms, HotelRepo: hotels}
}
