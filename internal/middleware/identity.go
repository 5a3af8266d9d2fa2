package middleware

// identity.go holds the context keys under which the authenticated user is
// stored and the accessors handlers use to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// setIdentity records the authenticated user on the request context.
func setIdentity(c echo.Context, userID uint64, email, role string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxEmail, email)
	c.Set(ctxRole, role)
}

// UserID returns the authenticated user's id, if any.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role or "".
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// Email returns the authenticated user's email or "".
func Email(c echo.Context) string {
	e, _ := c.Get(ctxEmail).(string)
	return e
}

// userKey identifies the caller for rate limiting. It returns "guest" when
// no user is authenticated.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
