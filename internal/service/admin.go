package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/repository"
)

// RoomForm is the raw input of the dashboard room form.
type RoomForm struct {
	RoomID       string
	BuildingID   string
	FloorNumber  string
	MaxOccupancy string
	Description  string
	Permission   string
}

// BuildingForm is the raw input of the dashboard building form.
type BuildingForm struct {
	BuildingID string
	Name       string
	TimeOpen   string
	TimeClosed string
}

// UserForm is the raw input of the dashboard user form.
type UserForm struct {
	INumber    string
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Permission string
}

// Dashboard is everything the administrator dashboard lists.
type Dashboard struct {
	Buildings []model.Building
	Rooms     []model.Room
	Users     []model.User
}

// AdminService implements the administrator dashboard.  Every operation
// re-reads the caller's level from the store, so a demoted administrator
// loses access before their session expires.
type AdminService struct {
	rooms      RoomStore
	buildings  BuildingStore
	users      UserStore
	messages   MessageStore
	bcryptCost int
}

func NewAdminService(rooms RoomStore, buildings BuildingStore, users UserStore, messages MessageStore, bcryptCost int) *AdminService {
	return &AdminService{rooms: rooms, buildings: buildings, users: users, messages: messages, bcryptCost: bcryptCost}
}

func (s *AdminService) requireAdmin(ctx context.Context, id auth.Identity) error {
	perm, err := s.users.PermissionOf(ctx, id.INumber)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !perm.IsAdmin() {
		logrus.WithField("i_number", id.INumber).Warn("stale administrator session refused")
		return ErrForbidden
	}
	return nil
}

func parsePermission(p *problems, raw string) model.Permission {
	n, ok := parseInt(raw)
	perm := model.Permission(n)
	p.check(ok && perm.Valid(), "Permission ID must be an integer from 0 to 5.")
	return perm
}

// UpsertRoom creates or replaces a room.
func (s *AdminService) UpsertRoom(ctx context.Context, actor auth.Identity, form RoomForm) (*model.Room, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	var (
		p    problems
		room model.Room
		ok   bool
	)
	room.ID = strings.TrimSpace(form.RoomID)
	p.check(room.ID != "" && length(room.ID) <= 10, "Room ID must be a non-empty string up to 10 characters.")
	room.BuildingID = strings.ToUpper(strings.TrimSpace(form.BuildingID))
	p.check(length(room.BuildingID) == 3, "Building ID must be exactly 3 characters.")
	room.FloorNumber, ok = parseInt(form.FloorNumber)
	p.check(ok && room.FloorNumber >= 0, "Floor number must be a non-negative integer.")
	room.MaxOccupancy, ok = parseInt(form.MaxOccupancy)
	p.check(ok && room.MaxOccupancy > 0, "Max occupancy must be a positive integer.")
	room.Description = strings.TrimSpace(form.Description)
	room.Permission = parsePermission(&p, form.Permission)
	if err := p.err(); err != nil {
		return nil, err
	}

	missing := invalid("Building " + room.BuildingID + " does not exist.")
	if _, err := s.buildings.GetByID(ctx, room.BuildingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, missing
		}
		return nil, err
	}
	// The foreign key still catches a building deleted in between.
	if err := s.rooms.Upsert(ctx, room); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, missing
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"room_id": room.ID, "admin": actor.INumber}).Info("room saved")
	return &room, nil
}

// UpsertBuilding creates or replaces a building.  Opening and closing
// times are checked for format only.
func (s *AdminService) UpsertBuilding(ctx context.Context, actor auth.Identity, form BuildingForm) (*model.Building, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	var (
		p   problems
		b   model.Building
		err error
	)
	b.ID = strings.ToUpper(strings.TrimSpace(form.BuildingID))
	p.check(length(b.ID) == 3, "Building ID must be exactly 3 characters.")
	b.Name = strings.TrimSpace(form.Name)
	p.check(b.Name != "" && length(b.Name) <= 45, "Building name is required and must be 1–45 characters long.")
	b.TimeOpen, err = model.ParseClock(form.TimeOpen)
	p.check(err == nil, "Opening time must be a valid 24-hour format (HH:MM or HH:MM:SS).")
	b.TimeClosed, err = model.ParseClock(form.TimeClosed)
	p.check(err == nil, "Closing time must be a valid 24-hour format (HH:MM or HH:MM:SS).")
	if err := p.err(); err != nil {
		return nil, err
	}

	if err := s.buildings.Upsert(ctx, b); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"building_id": b.ID, "admin": actor.INumber}).Info("building saved")
	return &b, nil
}

// UpsertUser creates or replaces a user, hashing the supplied password.
func (s *AdminService) UpsertUser(ctx context.Context, actor auth.Identity, form UserForm) (*model.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	var p problems
	u := userFields(&p, form.INumber, form.FirstName, form.LastName, form.Email, form.Password)
	u.Permission = parsePermission(&p, form.Permission)
	if err := p.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(form.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := s.users.Upsert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"i_number": u.INumber, "permission": u.Permission.Name(), "admin": actor.INumber}).Info("user saved")
	u.PasswordHash = ""
	return &u, nil
}

// Dashboard loads the lists shown on the dashboard.
func (s *AdminService) Dashboard(ctx context.Context, actor auth.Identity) (*Dashboard, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	var (
		d   Dashboard
		err error
	)
	if d.Buildings, err = s.buildings.List(ctx); err != nil {
		return nil, err
	}
	if d.Rooms, err = s.rooms.List(ctx); err != nil {
		return nil, err
	}
	if d.Users, err = s.users.List(ctx); err != nil {
		return nil, err
	}
	return &d, nil
}

// Messages lists contact messages ordered by title.
func (s *AdminService) Messages(ctx context.Context, actor auth.Identity) ([]model.Message, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.messages.List(ctx)
}
