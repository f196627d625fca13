package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/i-reserve/room-reservation/internal/middleware"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/service"
)

// floorChoices are the floors offered as checkboxes on the search form.
var floorChoices = []int{0, 1, 2, 3, 4}

// GeneralHandler serves the public pages, the profile and the contact
// form.
type GeneralHandler struct {
	Directory *service.DirectoryService
	Profiles  *service.ProfileService
	Contact   *service.ContactService

	CookieSecure bool
}

func NewGeneralHandler(d *service.DirectoryService, p *service.ProfileService, ct *service.ContactService, cookieSecure bool) *GeneralHandler {
	return &GeneralHandler{Directory: d, Profiles: p, Contact: ct, CookieSecure: cookieSecure}
}

func (h *GeneralHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home", "I-Reserve Home", nil)
}

func (h *GeneralHandler) Map(c echo.Context) error {
	return h.buildingPage(c, "map", "I-Reserve Map")
}

func (h *GeneralHandler) Buildings(c echo.Context) error {
	return h.buildingPage(c, "buildings", "Buildings")
}

func (h *GeneralHandler) buildingPage(c echo.Context, name, title string) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	buildings, err := h.Directory.Buildings(ctx)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, name, title, buildings)
}

// AvailabilityView is the data behind the availability page.
type AvailabilityView struct {
	Form         service.AvailabilityForm
	Floors       []int
	FloorChoices []int
	Buildings    []model.Building
	Result       *service.Availability
}

func (h *GeneralHandler) Availability(c echo.Context) error {
	form := service.AvailabilityForm{
		Building:  c.QueryParam("building"),
		Floors:    c.QueryParams()["floor"],
		Date:      c.QueryParam("date"),
		TimeStart: c.QueryParam("time_start"),
		TimeEnd:   c.QueryParam("time_end"),
	}
	if len(form.Floors) == 0 {
		form.Floors = c.QueryParams()["floor[]"]
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	v := AvailabilityView{Form: form, FloorChoices: floorChoices}
	var err error
	if v.Buildings, err = h.Directory.Buildings(ctx); err != nil {
		return err
	}
	v.Result, err = h.Directory.Search(ctx, form)
	if err != nil {
		return fail(c, err, "/availability", "", "Failed to load availability.")
	}
	v.Floors = v.Result.Floors
	return render(c, http.StatusOK, "availability", "I-Reserve Availability", v)
}

func (h *GeneralHandler) Profile(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	page, err := h.Profiles.Load(ctx, id.INumber)
	// /login sends live sessions back here, so a vanished account must end
	// the session and other failures render the error page.
	if errors.Is(err, service.ErrNotFound) {
		middleware.ClearSessionCookie(c, h.CookieSecure)
		middleware.FlashError(c, "User not found.")
		return redirect(c, "/login")
	}
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "profile", "Your Profile", page)
}

func (h *GeneralHandler) ContactPage(c echo.Context) error {
	return render(c, http.StatusOK, "contact", "I-Reserve Contact", c.QueryParam("success") == "true")
}

func (h *GeneralHandler) SubmitContact(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	if !id.Authenticated() {
		middleware.FlashError(c, "You must be logged in to send a message.")
		return redirect(c, "/login")
	}
	form := service.ContactForm{
		ReturnEmail: c.FormValue("return_email"),
		Title:       c.FormValue("message_title"),
		Body:        c.FormValue("message"),
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Contact.Submit(ctx, id, form); err != nil {
		return fail(c, err, "/contact", "", "Message submission failed. Please try again.")
	}
	return redirect(c, "/contact?success=true")
}
