package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/middleware"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/service"
)

// ReservationHandler serves the reserve form and the confirm and cancel
// actions of the profile page.
type ReservationHandler struct {
	Reservations *service.ReservationService
	Directory    *service.DirectoryService
}

func NewReservationHandler(r *service.ReservationService, d *service.DirectoryService) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Directory: d}
}

// ReserveView is the data behind the reserve page.  Room and Schedule are
// filled when the query names an existing room and a valid date.
type ReserveView struct {
	Form     service.ReservationForm
	Room     *model.Room
	Schedule []model.Reservation
}

func (h *ReservationHandler) Form(c echo.Context) error {
	v := ReserveView{Form: service.ReservationForm{
		RoomID:      c.QueryParam("room_id"),
		Date:        c.QueryParam("date"),
		TimeStart:   c.QueryParam("time_start"),
		TimeEnd:     c.QueryParam("time_end"),
		EventName:   c.QueryParam("event_name"),
		Description: c.QueryParam("event_desc"),
		PeopleCount: c.QueryParam("people_count"),
	}}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if v.Form.RoomID != "" {
		if room, err := h.Directory.Room(ctx, v.Form.RoomID); err == nil {
			v.Room = room
			if date, err := model.ParseDate(v.Form.Date); err == nil {
				if v.Schedule, err = h.Reservations.Schedule(ctx, room.ID, date); err != nil {
					logrus.WithField("room_id", room.ID).WithError(err).Warn("schedule unavailable")
				}
			}
		}
	}
	return render(c, http.StatusOK, "reserve", "Create New Reservation", v)
}

func (h *ReservationHandler) Create(c echo.Context) error {
	form := service.ReservationForm{
		RoomID:      c.FormValue("room_id"),
		Date:        c.FormValue("date"),
		TimeStart:   c.FormValue("time_start"),
		TimeEnd:     c.FormValue("time_end"),
		EventName:   c.FormValue("event_name"),
		Description: c.FormValue("event_desc"),
		PeopleCount: c.FormValue("people_count"),
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Reservations.Create(ctx, middleware.IdentityFrom(c), form); err != nil {
		return fail(c, err, reserveURL(form), "Room not found.", "Error Creating Reservation.")
	}
	middleware.FlashSuccess(c, "Reservation created successfully.")
	return redirect(c, "/profile")
}

func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.FlashError(c, "Reservation not found.")
		return redirect(c, "/profile")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	_, changed, err := h.Reservations.Confirm(ctx, middleware.IdentityFrom(c), id)
	if err != nil {
		return fail(c, err, "/profile", "Reservation not found.", "Reservation not confirmed.")
	}
	if changed {
		middleware.FlashSuccess(c, "Reservation confirmed successfully.")
	} else {
		middleware.FlashSuccess(c, "Reservation was already confirmed.")
	}
	return redirect(c, "/profile")
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.FlashError(c, "Reservation not found.")
		return redirect(c, "/profile")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Reservations.Cancel(ctx, middleware.IdentityFrom(c), id); err != nil {
		return fail(c, err, "/profile", "Reservation not found.", "Failed to cancel reservation.")
	}
	middleware.FlashSuccess(c, "Reservation cancelled successfully.")
	return redirect(c, "/profile")
}

// reserveURL sends the user back to the form with their input kept.
func reserveURL(f service.ReservationForm) string {
	q := url.Values{}
	for k, v := range map[string]string{
		"room_id":      f.RoomID,
		"date":         f.Date,
		"time_start":   f.TimeStart,
		"time_end":     f.TimeEnd,
		"event_name":   f.EventName,
		"event_desc":   f.Description,
		"people_count": f.PeopleCount,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return "/reserve?" + q.Encode()
}
