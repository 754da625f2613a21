package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// UserRepo mirrors identity provider accounts into the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Upsert creates the user or refreshes its profile fields.  Role and the
// recent search history are left alone on update.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if strings.TrimSpace(u.Username) == "" {
		u.Username = "Unknown"
	}
	const q = `INSERT INTO users (id, email, username, image_url, role, recent_searched_cities)
        VALUES (?, ?, ?, ?, ?, JSON_ARRAY())
        ON DUPLICATE KEY UPDATE email = VALUES(email), username = VALUES(username), image_url = VALUES(image_url)`
	if _, err := r.DB.ExecContext(ctx, q, u.ID, u.Email, u.Username, u.ImageURL, model.RoleUser); err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = stored
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var (
		u      model.User
		cities []byte
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,image_url,role,recent_searched_cities,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.ImageURL, &u.Role, &cities, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if u.RecentSearchedCities, err = decodeStrings(cities); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// AddRecentCity records a searched city, keeping at most
// model.MaxRecentCities entries.  The row is locked for the read-modify-write.
func (r *UserRepo) AddRecentCity(ctx context.Context, userID, city string) ([]string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT recent_searched_cities FROM users WHERE id = ? FOR UPDATE`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	current, err := decodeStrings(raw)
	if err != nil {
		return nil, err
	}
	next := model.AddRecentCity(current, city)
	encoded, err := encodeStrings(next)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET recent_searched_cities = ? WHERE id = ?`, encoded, userID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return next, nil
}
