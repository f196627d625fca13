package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/i-reserve/room-reservation/internal/auth"
)

const identityKey = "identity"

// SetIdentity attaches the session identity to the request context.
func SetIdentity(c echo.Context, id auth.Identity) { c.Set(identityKey, id) }

// IdentityFrom returns the identity loaded by Session, or the anonymous
// zero value when none was attached.
func IdentityFrom(c echo.Context) auth.Identity {
	id, _ := c.Get(identityKey).(auth.Identity)
	return id
}

// userID is the key segment used by the rate limiter and response cache.
func userID(c echo.Context) string {
	if id := IdentityFrom(c); id.Authenticated() {
		return strconv.FormatInt(id.INumber, 10)
	}
	return "anon"
}
