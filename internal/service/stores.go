// Package service holds the business operations of I-Reserve.  Each
// operation exists once here; handlers bind form input, call a service
// and redirect.  Persistence is reached through the small interfaces
// below so services can be tested against mocks.
package service

import (
	"context"
	"time"

	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/queue"
	"github.com/i-reserve/room-reservation/internal/repository"
)

type RoomStore interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	Upsert(ctx context.Context, room model.Room) error
	SearchAvailable(ctx context.Context, q repository.AvailabilityQuery) ([]model.Room, error)
}

type BuildingStore interface {
	GetByID(ctx context.Context, id string) (*model.Building, error)
	List(ctx context.Context) ([]model.Building, error)
	Upsert(ctx context.Context, b model.Building) error
}

type UserStore interface {
	Create(ctx context.Context, u model.User) error
	Upsert(ctx context.Context, u model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByINumber(ctx context.Context, iNumber int64) (*model.User, error)
	PermissionOf(ctx context.Context, iNumber int64) (model.Permission, error)
	List(ctx context.Context) ([]model.User, error)
	GetProfile(ctx context.Context, iNumber int64) (*repository.Profile, error)
}

type ReservationStore interface {
	CreateIfAvailable(ctx context.Context, res *model.Reservation) error
	UpdateLocked(ctx context.Context, id int64, decide func(model.Reservation) (repository.LockedAction, error)) (*model.Reservation, error)
	ListByUser(ctx context.Context, iNumber int64) ([]model.Reservation, error)
	ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]model.Reservation, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	List(ctx context.Context) ([]model.Message, error)
}

// SessionRevoker is the deny list consulted for logged-out sessions.
type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EventPublisher hands lifecycle events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}
