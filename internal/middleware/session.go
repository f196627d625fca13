package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
)

// Authenticator resolves a raw session token.  It is implemented by
// service.AccountService.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (auth.Identity, error)
}

// Session loads the identity carried by the session cookie.  Requests
// without a cookie, or with one that no longer verifies, continue as
// anonymous visitors; a stale cookie is cleared.
func Session(a Authenticator, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(auth.CookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			id, err := a.Authenticate(ctx, ck.Value)
			cancel()
			if err != nil {
				logrus.WithField("path", c.Path()).Debug("discarding invalid session cookie")
				ClearSessionCookie(c, secure)
				return next(c)
			}
			SetIdentity(c, id)
			return next(c)
		}
	}
}

// SetSessionCookie stores a signed token in the HttpOnly session cookie.
func SetSessionCookie(c echo.Context, tok auth.Token, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
