package middleware

// identity.go holds the accessors handlers use to read what JWTAuth and
// LoadRole stored on the echo context.

import "github.com/labstack/echo/v4"

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// Email returns the email claim of the caller's token, if any.
func Email(c echo.Context) string {
	s, _ := c.Get(ctxEmail).(string)
	return s
}

// Role returns the role loaded by LoadRole.
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// userID is the rate limiter's key component; anonymous callers share "anon".
func userID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
