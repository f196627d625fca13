package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type errorView struct {
	Code    int
	Message string
}

// ErrorHandler renders echo errors as HTML pages.  Unexpected errors are
// logged and shown as a 500 page without details.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Something went wrong on our side."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusNotFound:
			msg = "The page you asked for does not exist."
		case http.StatusMethodNotAllowed:
			msg = "That action is not allowed here."
		case http.StatusForbidden:
			msg = "Your form expired. Go back, reload the page and try again."
		default:
			if s, ok := he.Message.(string); ok && code < 500 {
				msg = s
			}
		}
	}
	if code >= 500 {
		logrus.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Request().URL.Path,
		}).WithError(err).Error("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if rerr := render(c, code, "error", http.StatusText(code), errorView{Code: code, Message: msg}); rerr != nil {
		logrus.WithError(rerr).Error("error page failed to render")
		_ = c.String(code, msg)
	}
}
