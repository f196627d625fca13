package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

const (
	flashErrorCookie   = "flash_error"
	flashSuccessCookie = "flash_success"
)

// Flash holds the one-shot notices carried across a redirect.
type Flash struct {
	Error   string
	Success string
}

// FlashError queues an error notice for the next page.
func FlashError(c echo.Context, msg string) { setFlash(c, flashErrorCookie, msg) }

// FlashSuccess queues a success notice for the next page.
func FlashSuccess(c echo.Context, msg string) { setFlash(c, flashSuccessCookie, msg) }

// TakeFlash reads the pending notices and clears them.
func TakeFlash(c echo.Context) Flash {
	return Flash{
		Error:   takeFlash(c, flashErrorCookie),
		Success: takeFlash(c, flashSuccessCookie),
	}
}

// HasFlash reports whether the request carries a pending notice.
func HasFlash(c echo.Context) bool {
	for _, name := range []string{flashErrorCookie, flashSuccessCookie} {
		if ck, err := c.Cookie(name); err == nil && ck.Value != "" {
			return true
		}
	}
	return false
}

func setFlash(c echo.Context, name, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlash(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil || ck.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true})
	msg, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ""
	}
	return msg
}
