package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

type fakeUsers map[string]model.User

func (f fakeUsers) Upsert(_ context.Context, u *model.User) error {
	prev, ok := f[u.ID]
	if !ok {
		prev = model.User{ID: u.ID, Role: model.RoleUser, RecentSearchedCities: []string{}}
	}
	prev.Email, prev.Username, prev.ImageURL = u.Email, u.Username, u.ImageURL
	f[u.ID] = prev
	*u = prev
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := f[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f fakeUsers) AddRecentCity(_ context.Context, id, city string) ([]string, error) {
	u, ok := f[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.RecentSearchedCities = model.AddRecentCity(u.RecentSearchedCities, city)
	f[id] = u
	return u.RecentSearchedCities, nil
}

type fakeHotelStore struct{ owners map[string]bool }

func (f *fakeHotelStore) Create(_ context.Context, h *model.Hotel) error {
	if f.owners[h.OwnerID] {
		return repository.ErrHotelExists
	}
	f.owners[h.OwnerID] = true
	h.ID = 7
	return nil
}

func TestUserSyncMeAndRecentCities(t *testing.T) {
	users := fakeUsers{}
	e, auth := newEcho()
	h := NewUserHandler(users)
	auth.POST("/v1/users/sync", h.Sync)
	auth.GET("/v1/users/me", h.Me)
	auth.POST("/v1/users/recent-cities", h.AddRecentCity)
	token := bearer(t, "user_1")

	rec := do(e, call{method: http.MethodGet, path: "/v1/users/me", auth: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, call{method: http.MethodPost, path: "/v1/users/sync", auth: token,
		body: jsonBody(`{"email":"ignored@example.com","username":"Ada"}`)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "user_1@example.com", users["user_1"].Email, "token email wins")

	for _, city := range []string{"Dhaka", "Paris", "Rome", "Oslo"} {
		rec = do(e, call{method: http.MethodPost, path: "/v1/users/recent-cities", auth: token,
			body: jsonBody(`{"city":"` + city + `"}`)})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.JSONEq(t, `{"recent_searched_cities":["Paris","Rome","Oslo"]}`, rec.Body.String())

	rec = do(e, call{method: http.MethodGet, path: "/v1/users/me", auth: token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"Ada"`)
}

func TestRegisterHotelOncePerOwner(t *testing.T) {
	e, auth := newEcho()
	auth.POST("/v1/hotels", NewHotelHandler(&fakeHotelStore{owners: map[string]bool{}}).RegisterHotel)
	body := `{"name":"Urbanza Suites","address":"Main Road 123","contact":"+0123456789","city":"Dhaka"}`

	rec := do(e, call{method: http.MethodPost, path: "/v1/hotels", auth: bearer(t, "owner_1"), body: jsonBody(body)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"owner_id":"owner_1"`)

	rec = do(e, call{method: http.MethodPost, path: "/v1/hotels", auth: bearer(t, "owner_1"), body: jsonBody(body)})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, call{method: http.MethodPost, path: "/v1/hotels", auth: bearer(t, "owner_2"), body: jsonBody(`{"name":"x"}`)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
