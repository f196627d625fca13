package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/middleware"
	"github.com/i-reserve/room-reservation/internal/service"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	Accounts     *service.AccountService
	CookieSecure bool
}

func NewAuthHandler(accounts *service.AccountService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Accounts: accounts, CookieSecure: cookieSecure}
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	if middleware.IdentityFrom(c).Authenticated() {
		return redirect(c, "/profile")
	}
	return render(c, http.StatusOK, "login", "Log In", c.QueryParam("email"))
}

func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	password := c.FormValue("password")
	if email == "" || password == "" {
		middleware.FlashError(c, "All Fields Are Required")
		return redirect(c, "/login")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	u, tok, err := h.Accounts.Login(ctx, email, password)
	if err != nil {
		return fail(c, err, "/login", "", "Login failed. Please try again.")
	}
	middleware.SetSessionCookie(c, tok, h.CookieSecure)
	middleware.FlashSuccess(c, "Welcome back, "+u.FirstName+".")
	return redirect(c, "/profile")
}

func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if middleware.IdentityFrom(c).Authenticated() {
		return redirect(c, "/profile")
	}
	return render(c, http.StatusOK, "newaccount", "Create Account", service.RegistrationForm{})
}

func (h *AuthHandler) Register(c echo.Context) error {
	form := service.RegistrationForm{
		INumber:         c.FormValue("i_number"),
		FirstName:       c.FormValue("fname"),
		LastName:        c.FormValue("lname"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		PasswordConfirm: c.FormValue("password_confirm"),
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	u, tok, err := h.Accounts.Register(ctx, form)
	if err != nil {
		return fail(c, err, "/newaccount", "", "Registration failed")
	}
	middleware.SetSessionCookie(c, tok, h.CookieSecure)
	middleware.FlashSuccess(c, "Account created. Welcome, "+u.FirstName+".")
	return redirect(c, "/profile")
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	id := middleware.IdentityFrom(c)
	if err := h.Accounts.Logout(ctx, id); err != nil {
		logrus.WithField("i_number", id.INumber).WithError(err).Warn("session revocation failed")
	}
	middleware.ClearSessionCookie(c, h.CookieSecure)
	middleware.FlashSuccess(c, "You have been logged out.")
	return redirect(c, "/login")
}
