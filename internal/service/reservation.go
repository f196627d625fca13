package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/metrics"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/queue"
	"github.com/i-reserve/room-reservation/internal/repository"
)

// Actor is the caller of a reservation operation with the permission level
// read from the store at the time of the call.
type Actor struct {
	INumber    int64
	Permission model.Permission
}

// Authorizer decides whether actor may change reservation r.  It runs with
// the reservation row locked, before any write.
type Authorizer func(actor Actor, r model.Reservation) bool

// OwnerOrAdmin admits the reservation's owner and administrators.
func OwnerOrAdmin(actor Actor, r model.Reservation) bool {
	return r.OwnedBy(actor.INumber) || actor.Permission.IsAdmin()
}

// ReservationForm is the raw input of the reserve form.
type ReservationForm struct {
	RoomID      string
	Date        string
	TimeStart   string
	TimeEnd     string
	EventName   string
	Description string
	PeopleCount string
}

// ReservationService implements the reservation lifecycle: pending on
// create, then confirmed or cancelled (deleted).
type ReservationService struct {
	rooms        RoomStore
	reservations ReservationStore
	users        UserStore
	events       EventPublisher
	authorize    Authorizer
}

func NewReservationService(rooms RoomStore, reservations ReservationStore, users UserStore, events EventPublisher, authorize Authorizer) *ReservationService {
	if authorize == nil {
		authorize = OwnerOrAdmin
	}
	return &ReservationService{rooms: rooms, reservations: reservations, users: users, events: events, authorize: authorize}
}

func (f ReservationForm) parse() (model.Reservation, error) {
	var (
		p   problems
		res model.Reservation
		err error
	)
	res.RoomID = strings.TrimSpace(f.RoomID)
	p.check(res.RoomID != "" && length(res.RoomID) <= 10, "A room must be selected.")

	res.EventName = strings.TrimSpace(f.EventName)
	p.check(res.EventName != "" && length(res.EventName) <= 45, "Event name is required and must be at most 45 characters.")

	res.Date, err = model.ParseDate(f.Date)
	p.check(err == nil, "Date must be in YYYY-MM-DD format.")

	start, errStart := model.ParseClock(f.TimeStart)
	p.check(errStart == nil, "Start time must be a valid 24-hour format (HH:MM or HH:MM:SS).")
	end, errEnd := model.ParseClock(f.TimeEnd)
	p.check(errEnd == nil, "End time must be a valid 24-hour format (HH:MM or HH:MM:SS).")
	res.Window = model.Window{Start: start, End: end}
	if errStart == nil && errEnd == nil {
		p.check(res.Window.Valid(), "End time must be after start time.")
	}

	n, ok := parseInt(f.PeopleCount)
	p.check(ok && n > 0, "Number of people must be a positive integer.")
	res.PeopleCount = n

	res.Description = strings.TrimSpace(f.Description)
	return res, p.err()
}

// Create validates the form and books the room for actor as a pending
// reservation.  The overlap check and insert are atomic per room.
func (s *ReservationService) Create(ctx context.Context, actor auth.Identity, form ReservationForm) (*model.Reservation, error) {
	res, err := form.parse()
	if err != nil {
		return nil, s.count("create", err)
	}
	room, err := s.rooms.GetByID(ctx, res.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.count("create", ErrNotFound)
		}
		return nil, s.count("create", err)
	}
	if res.PeopleCount > room.MaxOccupancy {
		return nil, s.count("create", invalid(fmt.Sprintf("Number of people exceeds the room's maximum occupancy of %d.", room.MaxOccupancy)))
	}
	perm, err := s.permissionOf(ctx, actor)
	if err != nil {
		return nil, s.count("create", err)
	}
	if !perm.CanBook(room.Permission) {
		return nil, s.count("create", ErrForbidden)
	}

	res.INumber = actor.INumber
	switch err := s.reservations.CreateIfAvailable(ctx, &res); {
	case errors.Is(err, repository.ErrConflict):
		return nil, s.count("create", ErrConflict)
	case errors.Is(err, repository.ErrNotFound):
		return nil, s.count("create", ErrNotFound)
	case err != nil:
		return nil, s.count("create", err)
	}

	logrus.WithFields(logrus.Fields{"reserve_id": res.ID, "room_id": res.RoomID, "i_number": res.INumber}).Info("reservation created")
	s.publish(ctx, queue.NewReservationEvent(queue.ReservationCreated, actor.INumber, res))
	s.count("create", nil)
	return &res, nil
}

// Confirm moves a pending reservation to confirmed.  Confirming an already
// confirmed reservation succeeds without a write; changed reports whether a
// transition happened.
func (s *ReservationService) Confirm(ctx context.Context, actor auth.Identity, id int64) (res *model.Reservation, changed bool, err error) {
	a, err := s.actor(ctx, actor)
	if err != nil {
		return nil, false, s.count("confirm", err)
	}
	res, err = s.reservations.UpdateLocked(ctx, id, func(r model.Reservation) (repository.LockedAction, error) {
		if !s.authorize(a, r) {
			return repository.Keep, ErrForbidden
		}
		if r.Confirmed() {
			return repository.Keep, nil
		}
		changed = true
		return repository.MarkConfirmed, nil
	})
	if err != nil {
		return nil, false, s.count("confirm", mapNotFound(err))
	}
	if changed {
		res.Status = model.StatusConfirmed
		logrus.WithFields(logrus.Fields{"reserve_id": id, "actor": actor.INumber}).Info("reservation confirmed")
		s.publish(ctx, queue.NewReservationEvent(queue.ReservationConfirmed, actor.INumber, *res))
	}
	s.count("confirm", nil)
	return res, changed, nil
}

// Cancel deletes a reservation in either state.  A missing id reports
// ErrNotFound and writes nothing.
func (s *ReservationService) Cancel(ctx context.Context, actor auth.Identity, id int64) (*model.Reservation, error) {
	a, err := s.actor(ctx, actor)
	if err != nil {
		return nil, s.count("cancel", err)
	}
	res, err := s.reservations.UpdateLocked(ctx, id, func(r model.Reservation) (repository.LockedAction, error) {
		if !s.authorize(a, r) {
			return repository.Keep, ErrForbidden
		}
		return repository.Remove, nil
	})
	if err != nil {
		return nil, s.count("cancel", mapNotFound(err))
	}
	logrus.WithFields(logrus.Fields{"reserve_id": id, "actor": actor.INumber}).Info("reservation cancelled")
	s.publish(ctx, queue.NewReservationEvent(queue.ReservationCancelled, actor.INumber, *res))
	s.count("cancel", nil)
	return res, nil
}

// ListForUser returns the reservations shown on a user's profile.
func (s *ReservationService) ListForUser(ctx context.Context, iNumber int64) ([]model.Reservation, error) {
	return s.reservations.ListByUser(ctx, iNumber)
}

// Schedule returns the existing bookings of a room on a date.
func (s *ReservationService) Schedule(ctx context.Context, roomID string, date time.Time) ([]model.Reservation, error) {
	return s.reservations.ListByRoomAndDate(ctx, roomID, date)
}

func (s *ReservationService) actor(ctx context.Context, id auth.Identity) (Actor, error) {
	perm, err := s.permissionOf(ctx, id)
	if err != nil {
		return Actor{}, err
	}
	return Actor{INumber: id.INumber, Permission: perm}, nil
}

// permissionOf re-reads the caller's level; a deleted account is forbidden.
func (s *ReservationService) permissionOf(ctx context.Context, id auth.Identity) (model.Permission, error) {
	perm, err := s.users.PermissionOf(ctx, id.INumber)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrForbidden
	}
	return perm, err
}

func (s *ReservationService) publish(ctx context.Context, ev queue.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		logrus.WithFields(logrus.Fields{"event": ev.Type, "reserve_id": ev.ReservationID}).WithError(err).Warn("event not published")
	}
}

// count records the outcome of op and passes err through.
func (s *ReservationService) count(op string, err error) error {
	metrics.ReservationsTotal.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	}
	return "error"
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
