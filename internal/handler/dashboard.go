package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/i-reserve/room-reservation/internal/middleware"
	"github.com/i-reserve/room-reservation/internal/service"
)

// DashboardHandler serves the administrator pages.  Routes are gated on
// the session; the service re-checks the stored level.
type DashboardHandler struct {
	Admin *service.AdminService
}

func NewDashboardHandler(a *service.AdminService) *DashboardHandler {
	return &DashboardHandler{Admin: a}
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	d, err := h.Admin.Dashboard(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, err, "/profile", "", "Failed to load the dashboard.")
	}
	return render(c, http.StatusOK, "dashboard", "Dashboard", d)
}

func (h *DashboardHandler) Messages(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	msgs, err := h.Admin.Messages(ctx, middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, err, "/profile", "", "Failed to load messages.")
	}
	return render(c, http.StatusOK, "messages", "Messages", msgs)
}

func (h *DashboardHandler) SaveRoom(c echo.Context) error {
	form := service.RoomForm{
		RoomID:       c.FormValue("room_id"),
		BuildingID:   c.FormValue("building_id"),
		FloorNumber:  c.FormValue("floor_number"),
		MaxOccupancy: c.FormValue("max_occupancy"),
		Description:  c.FormValue("room_desc"),
		Permission:   c.FormValue("permission_id"),
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	room, err := h.Admin.UpsertRoom(ctx, middleware.IdentityFrom(c), form)
	if err != nil {
		return fail(c, err, "/dashboard", "", "Failed to save room.")
	}
	middleware.FlashSuccess(c, "Room "+room.ID+" saved.")
	return redirect(c, "/dashboard")
}

func (h *DashboardHandler) SaveBuilding(c echo.Context) error {
	form := service.BuildingForm{
		BuildingID: c.FormValue("building_id"),
		Name:       c.FormValue("building_name"),
		TimeOpen:   c.FormValue("time_open"),
		TimeClosed: c.FormValue("time_closed"),
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.Admin.UpsertBuilding(ctx, middleware.IdentityFrom(c), form)
	if err != nil {
		return fail(c, err, "/dashboard", "", "Failed to save building.")
	}
	middleware.FlashSuccess(c, "Building "+b.ID+" saved.")
	return redirect(c, "/dashboard")
}

func (h *DashboardHandler) SaveUser(c echo.Context) error {
	form := service.UserForm{
		INumber:    c.FormValue("i_number"),
		FirstName:  c.FormValue("fname"),
		LastName:   c.FormValue("lname"),
		Email:      c.FormValue("email"),
		Password:   c.FormValue("password"),
		Permission: c.FormValue("permission_id"),
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.Admin.UpsertUser(ctx, middleware.IdentityFrom(c), form)
	if err != nil {
		return fail(c, err, "/dashboard", "", "Failed to save user.")
	}
	middleware.FlashSuccess(c, "User "+u.DisplayName()+" saved.")
	return redirect(c, "/dashboard")
}
