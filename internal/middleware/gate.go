package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/metrics"
)

// Gate runs the given checks against the request identity before the
// handler.  A denied request is redirected with 303 and the check's notice
// flashed; the handler is never invoked.
func Gate(checks ...auth.Check) echo.MiddlewareFunc {
	check := auth.Chain(checks...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			d := check(id)
			if d.Admit {
				return next(c)
			}
			metrics.GateDenials.WithLabelValues(d.Redirect).Inc()
			logrus.WithFields(logrus.Fields{
				"path":     c.Request().URL.Path,
				"i_number": id.INumber,
				"redirect": d.Redirect,
			}).Info("gate denied request")
			FlashError(c, d.Notice)
			return c.Redirect(http.StatusSeeOther, d.Redirect)
		}
	}
}
