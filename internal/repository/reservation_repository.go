package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// ReservationRepo stores reservations in MySQL.  It implements
// booking.ReservationStore.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

var _ booking.ReservationStore = (*ReservationRepo)(nil)

const reservationColumns = `r.id, r.user_id, r.room_id, r.hotel_id, r.check_in, r.check_out, r.guests,
    r.total_price_cents, r.payment_status, r.payment_method, r.created_at, r.updated_at`

// overlapWhere is the half-open overlap predicate: an existing stay
// [check_in, check_out) collides with [?, ?) iff check_in < ?out AND ?in < check_out.
const overlapWhere = `r.room_id = ? AND r.check_in < ? AND r.check_out > ?`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner, extra ...any) (model.Reservation, error) {
	var r model.Reservation
	var status string
	dest := append([]any{
		&r.ID, &r.UserID, &r.RoomID, &r.HotelID, &r.CheckIn, &r.CheckOut, &r.Guests,
		&r.TotalPriceCents, &status, &r.PaymentMethod, &r.CreatedAt, &r.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return model.Reservation{}, err
	}
	r.PaymentStatus = model.PaymentStatus(status)
	return r, nil
}

// FindOverlapping returns every reservation of roomID that overlaps stay,
// paid or not.
func (r *ReservationRepo) FindOverlapping(ctx context.Context, roomID uint64, stay booking.DateRange) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations r WHERE ` + overlapWhere + ` ORDER BY r.check_in`
	rows, err := r.db.QueryContext(ctx, q, roomID, stay.CheckOut.UTC(), stay.CheckIn.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// InsertIfAvailable commits res only if no overlapping reservation exists
// at commit time.  The room row is locked with SELECT ... FOR UPDATE so
// concurrent inserts for the same room queue behind each other inside
// MySQL; the loser sees the winner's row and gets
// booking.ErrConcurrencyConflict.  Nothing is written on any error.
func (r *ReservationRepo) InsertIfAvailable(ctx context.Context, res *model.Reservation) error {
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

	var locked uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = ? FOR UPDATE`, res.RoomID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}

	var n int
	q := `SELECT COUNT(*) FROM reservations r WHERE ` + overlapWhere
	if err := tx.QueryRowContext(ctx, q, res.RoomID, res.CheckOut.UTC(), res.CheckIn.UTC()).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d overlapping reservation(s) for room %d", booking.ErrConcurrencyConflict, n, res.RoomID)
	}

	status := res.PaymentStatus
	if status == "" {
		status = model.PaymentUnpaid
	}
	method := res.PaymentMethod
	if method == "" {
		method = model.PaymentMethodAtHotel
	}
	const ins = `INSERT INTO reservations
        (user_id, room_id, hotel_id, check_in, check_out, guests, total_price_cents, payment_status, payment_method)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins, res.UserID, res.RoomID, res.HotelID, res.CheckIn.UTC(), res.CheckOut.UTC(),
		res.Guests, res.TotalPriceCents, string(status), method)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	var createdAt, updatedAt sql.NullTime
	if err := tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM reservations WHERE id = ?`, id).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	res.ID = uint64(id)
	res.PaymentStatus = status
	res.PaymentMethod = method
	res.CheckIn = res.CheckIn.UTC()
	res.CheckOut = res.CheckOut.UTC()
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time
	return nil
}

// GetReservation loads a reservation by id.
func (r *ReservationRepo) GetReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// MarkPaid flips payment_status to PAID.  The UPDATE only matches UNPAID
// rows, so the status can never move backwards and replays are harmless.
func (r *ReservationRepo) MarkPaid(ctx context.Context, id uint64, method string) (model.Reservation, error) {
	const q = `UPDATE reservations SET payment_status = 'PAID', payment_method = ? WHERE id = ? AND payment_status = 'UNPAID'`
	if _, err := r.db.ExecContext(ctx, q, method, id); err != nil {
		return model.Reservation{}, err
	}
	return r.GetReservation(ctx, id)
}

const detailJoin = ` FROM reservations r
    JOIN rooms rm ON rm.id = r.room_id
    JOIN hotels h ON h.id = r.hotel_id`

func (r *ReservationRepo) listDetails(ctx context.Context, where string, arg any) ([]model.ReservationDetail, error) {
	q := `SELECT ` + reservationColumns + `, rm.room_type, h.name, h.address` + detailJoin +
		` WHERE ` + where + ` ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var d model.ReservationDetail
		res, err := scanReservation(rows, &d.RoomType, &d.HotelName, &d.Address)
		if err != nil {
			return nil, err
		}
		d.Reservation = res
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByUser returns a guest's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]model.ReservationDetail, error) {
	return r.listDetails(ctx, `r.user_id = ?`, userID)
}

// ListByHotel returns a hotel's reservations, newest first.
func (r *ReservationRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.ReservationDetail, error) {
	return r.listDetails(ctx, `r.hotel_id = ?`, hotelID)
}
