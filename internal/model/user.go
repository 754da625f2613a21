package model

import "time"

// Roles a user can hold.  Everybody starts as RoleUser and becomes
// RoleHotelOwner after registering a hotel.
const (
	RoleUser       = "user"
	RoleHotelOwner = "hotelOwner"
)

// MaxRecentCities bounds the recent search history kept per user.
const MaxRecentCities = 3

// User mirrors the users table.  ID is the subject issued by the external
// identity provider; this service never stores credentials.
type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Username             string    `json:"username"`
	ImageURL             string    `json:"image"`
	Role                 string    `json:"role"`
	RecentSearchedCities []string  `json:"recent_searched_cities"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AddRecentCity appends city to the history, evicting the oldest entry when
// the list is full.  A city already present leaves the list untouched.  The
// returned slice never aliases the input.
func AddRecentCity(cities []string, city string) []string {
	out := make([]string, 0, MaxRecentCities)
	for _, c := range cities {
		if c == city {
			return append(out, cities...)
		}
	}
	out = append(out, cities...)
	for len(out) >= MaxRecentCities {
		out = out[1:]
	}
	return append(out, city)
}
