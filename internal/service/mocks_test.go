package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/queue"
	"github.com/i-reserve/room-reservation/internal/repository"
)

type mockRooms struct{ mock.Mock }

func (m *mockRooms) GetByID(ctx context.Context, id string) (*model.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*model.Room)
	return room, args.Error(1)
}

func (m *mockRooms) List(ctx context.Context) ([]model.Room, error) {
	args := m.Called(ctx)
	rooms, _ := args.Get(0).([]model.Room)
	return rooms, args.Error(1)
}

func (m *mockRooms) Upsert(ctx context.Context, room model.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockRooms) SearchAvailable(ctx context.Context, q repository.AvailabilityQuery) ([]model.Room, error) {
	args := m.Called(ctx, q)
	rooms, _ := args.Get(0).([]model.Room)
	return rooms, args.Error(1)
}

type mockBuildings struct{ mock.Mock }

func (m *mockBuildings) GetByID(ctx context.Context, id string) (*model.Building, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Building)
	return b, args.Error(1)
}

func (m *mockBuildings) List(ctx context.Context) ([]model.Building, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]model.Building)
	return b, args.Error(1)
}

func (m *mockBuildings) Upsert(ctx context.Context, b model.Building) error {
	return m.Called(ctx, b).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) Upsert(ctx context.Context, u model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByINumber(ctx context.Context, iNumber int64) (*model.User, error) {
	args := m.Called(ctx, iNumber)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUsers) PermissionOf(ctx context.Context, iNumber int64) (model.Permission, error) {
	args := m.Called(ctx, iNumber)
	return args.Get(0).(model.Permission), args.Error(1)
}

func (m *mockUsers) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]model.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetProfile(ctx context.Context, iNumber int64) (*repository.Profile, error) {
	args := m.Called(ctx, iNumber)
	p, _ := args.Get(0).(*repository.Profile)
	return p, args.Error(1)
}

type mockMessages struct{ mock.Mock }

func (m *mockMessages) Create(ctx context.Context, msg *model.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessages) List(ctx context.Context) ([]model.Message, error) {
	args := m.Called(ctx)
	msgs, _ := args.Get(0).([]model.Message)
	return msgs, args.Error(1)
}

type mockRevoker struct{ mock.Mock }

func (m *mockRevoker) Revoke(ctx context.Context, jti string, exp time.Time) error {
	return m.Called(ctx, jti, exp).Error(0)
}

func (m *mockRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// memReservations is an in-memory ReservationStore whose mutex plays the
// part of the row lock.
type memReservations struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Reservation
	writes int
}

func newMemReservations(rows ...model.Reservation) *memReservations {
	m := &memReservations{rows: map[int64]model.Reservation{}, nextID: 100}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

func (m *memReservations) CreateIfAvailable(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.RoomID == res.RoomID && r.Date.Equal(res.Date) && r.Window.Overlaps(res.Window) {
			return repository.ErrConflict
		}
	}
	m.nextID++
	res.ID = m.nextID
	res.Status = model.StatusPending
	m.rows[res.ID] = *res
	m.writes++
	return nil
}

func (m *memReservations) UpdateLocked(_ context.Context, id int64, decide func(model.Reservation) (repository.LockedAction, error)) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	action, err := decide(r)
	if err != nil {
		return &r, err
	}
	switch action {
	case repository.MarkConfirmed:
		updated := r
		updated.Status = model.StatusConfirmed
		m.rows[id] = updated
		m.writes++
	case repository.Remove:
		delete(m.rows, id)
		m.writes++
	}
	return &r, nil
}

func (m *memReservations) ListByUser(_ context.Context, iNumber int64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.rows {
		if r.INumber == iNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) ListByRoomAndDate(_ context.Context, roomID string, date time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.rows {
		if r.RoomID == roomID && r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}
