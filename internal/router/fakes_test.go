package router

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/repository"
)

// memDB is an in-memory store shared by the fake repositories below.
type memDB struct {
	mu           sync.Mutex
	users        map[int64]model.User
	buildings    map[string]model.Building
	rooms        map[string]model.Room
	reservations map[int64]model.Reservation
	messages     []model.Message
	nextID       int64

	// profileErr, when set, is returned by every profile lookup.
	profileErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[int64]model.User{},
		buildings:    map[string]model.Building{},
		rooms:        map[string]model.Room{},
		reservations: map[int64]model.Reservation{},
	}
}

func (m *memDB) addUser(iNumber int64, first, email, password string, perm model.Permission) {
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		panic(err)
	}
	m.users[iNumber] = model.User{INumber: iNumber, FirstName: first, LastName: "Tester", Email: email, PasswordHash: hash, Permission: perm}
}

type fakeUsers struct{ *memDB }

func (f fakeUsers) Create(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.users {
		if x.Email == u.Email || x.INumber == u.INumber {
			return repository.ErrDuplicate
		}
	}
	f.users[u.INumber] = u
	return nil
}

func (f fakeUsers) Upsert(_ context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.INumber] = u
	return nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeUsers) GetByINumber(_ context.Context, iNumber int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[iNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f fakeUsers) PermissionOf(ctx context.Context, iNumber int64) (model.Permission, error) {
	u, err := f.GetByINumber(ctx, iNumber)
	if err != nil {
		return 0, err
	}
	return u.Permission, nil
}

func (f fakeUsers) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].INumber < out[j].INumber })
	return out, nil
}

func (f fakeUsers) GetProfile(ctx context.Context, iNumber int64) (*repository.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	u, err := f.GetByINumber(ctx, iNumber)
	if err != nil {
		return nil, err
	}
	return &repository.Profile{User: *u, PermissionName: u.Permission.Name()}, nil
}

type fakeBuildings struct{ *memDB }

func (f fakeBuildings) GetByID(_ context.Context, id string) (*model.Building, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buildings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (f fakeBuildings) List(_ context.Context) ([]model.Building, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Building
	for _, b := range f.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeBuildings) Upsert(_ context.Context, b model.Building) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buildings[b.ID] = b
	return nil
}

type fakeRooms struct{ *memDB }

func (f fakeRooms) GetByID(_ context.Context, id string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f fakeRooms) List(ctx context.Context) ([]model.Room, error) {
	return f.SearchAvailable(ctx, repository.AvailabilityQuery{})
}

func (f fakeRooms) Upsert(_ context.Context, r model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.buildings[r.BuildingID]; !ok {
		return repository.ErrMissingReference
	}
	f.rooms[r.ID] = r
	return nil
}

// SearchAvailable applies the same filters as the SQL builder.
func (f fakeRooms) SearchAvailable(_ context.Context, q repository.AvailabilityQuery) ([]model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Room
	for _, r := range f.rooms {
		if q.Building != "" && !strings.Contains(strings.ToUpper(r.BuildingID), strings.ToUpper(q.Building)) {
			continue
		}
		if len(q.Floors) > 0 && !containsInt(q.Floors, r.FloorNumber) {
			continue
		}
		if q.Date != nil && q.Window != nil && f.reservedLocked(r.ID, *q.Date, *q.Window) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BuildingID != out[j].BuildingID {
			return out[i].BuildingID < out[j].BuildingID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memDB) reservedLocked(roomID string, date time.Time, w model.Window) bool {
	for _, res := range m.reservations {
		if res.RoomID == roomID && res.Date.Equal(date) && res.Window.Overlaps(w) {
			return true
		}
	}
	return false
}

func containsInt(xs []int, n int) bool {
	for _, x := range xs {
		if x == n {
			return true
		}
	}
	return false
}

type fakeReservations struct{ *memDB }

func (f fakeReservations) CreateIfAvailable(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[res.RoomID]; !ok {
		return repository.ErrNotFound
	}
	if f.reservedLocked(res.RoomID, res.Date, res.Window) {
		return repository.ErrConflict
	}
	f.nextID++
	res.ID = f.nextID
	res.Status = model.StatusPending
	f.reservations[res.ID] = *res
	return nil
}

func (f fakeReservations) UpdateLocked(_ context.Context, id int64, decide func(model.Reservation) (repository.LockedAction, error)) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	action, err := decide(r)
	if err != nil {
		return &r, err
	}
	switch action {
	case repository.MarkConfirmed:
		c := r
		c.Status = model.StatusConfirmed
		f.reservations[id] = c
	case repository.Remove:
		delete(f.reservations, id)
	}
	return &r, nil
}

func (f fakeReservations) ListByUser(_ context.Context, iNumber int64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.INumber == iNumber {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeReservations) ListByRoomAndDate(_ context.Context, roomID string, date time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.RoomID == roomID && r.Date.Equal(date) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeMessages struct{ *memDB }

func (f fakeMessages) Create(_ context.Context, msg *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f fakeMessages) List(_ context.Context) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Message(nil), f.messages...), nil
}
