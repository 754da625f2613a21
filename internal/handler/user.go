package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// UserStore mirrors identity provider accounts.
type UserStore interface {
	Upsert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	AddRecentCity(ctx context.Context, userID, city string) ([]string, error)
}

// UserHandler exposes the caller's profile.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

// Sync handles POST /v1/users/sync.  Clients call it after sign-in so the
// profile of the identity provider is mirrored locally.  The email claim
// of the token wins over the body.
func (h *UserHandler) Sync(c echo.Context) error {
	var body struct {
		Email    string `json:"email" validate:"omitempty,email"`
		Username string `json:"username" validate:"max=128"`
		Image    string `json:"image" validate:"omitempty,url"`
	}
	if msg := bindValid(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	u := &model.User{
		ID:       middleware.UserID(c),
		Email:    body.Email,
		Username: body.Username,
		ImageURL: body.Image,
	}
	if email := middleware.Email(c); email != "" {
		u.Email = email
	}
	if u.Email == "" {
		return badRequest(c, "email is required")
	}
	if err := h.Users.Upsert(c.Request().Context(), u); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Me handles GET /v1/users/me.
func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.Users.GetByID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// AddRecentCity handles POST /v1/users/recent-cities and returns the
// updated history.
func (h *UserHandler) AddRecentCity(c echo.Context) error {
	var body struct {
		City string `json:"city" validate:"required,max=64"`
	}
	if msg := bindValid(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	city := strings.TrimSpace(body.City)
	if city == "" {
		return badRequest(c, "city is required")
	}
	cities, err := h.Users.AddRecentCity(c.Request().Context(), middleware.UserID(c), city)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"recent_searched_cities": cities})
}
