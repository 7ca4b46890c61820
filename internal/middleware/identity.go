package middleware

// identity.go reads back what JWTAuth stored.  Handlers and the rate
// limiter use these instead of touching context keys directly.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated operator id.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated operator role, or "".
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// userKey is the rate-limit identity: the operator id, or "anon".
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
