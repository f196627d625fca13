// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/config"
	"github.com/i-reserve/room-reservation/internal/handler"
	"github.com/i-reserve/room-reservation/internal/metrics"
	"github.com/i-reserve/room-reservation/internal/middleware"
	"github.com/i-reserve/room-reservation/internal/view"
)

// Handlers groups the page handlers.
type Handlers struct {
	Auth         *handler.AuthHandler
	General      *handler.GeneralHandler
	Reservations *handler.ReservationHandler
	Dashboard    *handler.DashboardHandler
}

// Options carries the cross-cutting settings.  Redis may be nil, in which
// case rate limiting falls back to process memory and caching is off.
type Options struct {
	CookieSecure bool
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
	Redis        *redis.Client
	DB           handler.Pinger
}

var (
	requireLogin = middleware.Gate(auth.RequireAuthentication)
	requireAdmin = middleware.Gate(auth.RequireAuthentication, auth.RequireAdministrator)
)

// New builds the echo instance with the global middleware chain:
// request id, request logging, panic recovery, metrics, session loading
// and CSRF protection, in that order.
func New(renderer echo.Renderer, sessions middleware.Authenticator, h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.Session(sessions, opts.CookieSecure))
	e.Use(echomw.CSRFWithConfig(echomw.CSRFConfig{
		TokenLookup:    "form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   opts.CookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)
	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)

	RegisterRoutes(e, opts.DB)
	RegisterAuth(e, h.Auth, limit)
	RegisterPublic(e, h.General, limit, cache)
	RegisterReservations(e, h.Reservations, limit)
	RegisterDashboard(e, h.Dashboard)
	return e
}

// RegisterRoutes registers the operational endpoints and static assets.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.StaticFS("/static", view.Static())
}

// RegisterAuth registers login, registration and logout.  Form posts are
// rate limited.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	e.GET("/login", a.LoginPage)
	e.POST("/login", a.Login, limit)
	e.GET("/newaccount", a.RegisterPage)
	e.POST("/newaccount", a.Register, limit)
	e.GET("/logout", a.Logout, requireLogin)
}

// RegisterPublic registers the pages anyone may browse, plus the profile
// and the contact form.  Building pages are served through the response
// cache.
func RegisterPublic(e *echo.Echo, g *handler.GeneralHandler, limit, cache echo.MiddlewareFunc) {
	e.GET("/", g.Home)
	e.GET("/map", g.Map, cache)
	e.GET("/buildings", g.Buildings, cache)
	e.GET("/availability", g.Availability, limit)
	e.GET("/contact", g.ContactPage)
	e.POST("/contact", g.SubmitContact, limit)
	e.GET("/profile", g.Profile, requireLogin)
}

// RegisterReservations registers the reservation lifecycle routes.  All of
// them require a session.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, limit echo.MiddlewareFunc) {
	e.GET("/reserve", r.Form, requireLogin)
	e.POST("/reserve/new", r.Create, requireLogin, limit)

	g := e.Group("/reservations", requireLogin)
	g.POST("/:id/confirm", r.Confirm)
	g.POST("/:id/cancel", r.Cancel)
}

// RegisterDashboard registers the administrator pages.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler) {
	e.GET("/dashboard", d.Dashboard, requireAdmin)
	e.GET("/messages", d.Messages, requireAdmin)

	g := e.Group("/dashboard", requireAdmin)
	g.POST("/room", d.SaveRoom)
	g.POST("/building", d.SaveBuilding)
	g.POST("/users", d.SaveUser)
}
