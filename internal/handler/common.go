// Package handler binds HTML forms to service calls.  Pages are rendered
// through view.Renderer; every POST answers with a 303 redirect and a
// flash notice.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/middleware"
	"github.com/i-reserve/room-reservation/internal/service"
	"github.com/i-reserve/room-reservation/internal/view"
)

// requestTimeout bounds the store work done for one request.
const requestTimeout = 5 * time.Second

// Notices shared by several handlers.
const (
	noticeConflict  = "That room is already reserved during the selected time."
	noticeForbidden = "You do not have permission to do that."
	noticeUnknown   = "Something went wrong. Please try again."
)

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// render draws page name with the common page data filled in.
func render(c echo.Context, status int, name, title string, data any) error {
	f := middleware.TakeFlash(c)
	csrf, _ := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string)
	return c.Render(status, name, view.Page{
		Title:   title,
		User:    middleware.IdentityFrom(c),
		Error:   f.Error,
		Success: f.Success,
		CSRF:    csrf,
		Data:    data,
	})
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}

// fail flashes a notice describing err and redirects.  notFound is used for
// service.ErrNotFound; errors without a user-facing meaning are logged and
// shown as fallback.
func fail(c echo.Context, err error, to, notFound, fallback string) error {
	middleware.FlashError(c, describe(c, err, notFound, fallback))
	return redirect(c, to)
}

func describe(c echo.Context, err error, notFound, fallback string) string {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return strings.Join(ve.Problems, " ")
	case errors.Is(err, service.ErrConflict):
		return noticeConflict
	case errors.Is(err, service.ErrForbidden):
		return noticeForbidden
	case errors.Is(err, service.ErrNotFound) && notFound != "":
		return notFound
	case errors.Is(err, service.ErrEmailExists):
		return "Email Already Registered"
	case errors.Is(err, service.ErrINumberExists):
		return "I-Number Already Registered"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password."
	}
	logrus.WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Request().URL.Path,
	}).WithError(err).Error("request failed")
	if fallback == "" {
		return noticeUnknown
	}
	return fallback
}
