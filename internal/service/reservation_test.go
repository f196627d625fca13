package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i-reserve/room-reservation/internal/auth"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/queue"
	"github.com/i-reserve/room-reservation/internal/repository"
)

const (
	owner    int64 = 111111111
	stranger int64 = 222222222
	admin    int64 = 333333333
)

var eng101 = &model.Room{ID: "ENG101", BuildingID: "ENG", FloorNumber: 1, MaxOccupancy: 20, Permission: model.PermissionStudent}

func clock(t *testing.T, s string) model.Clock {
	t.Helper()
	c, err := model.ParseClock(s)
	require.NoError(t, err)
	return c
}

func booked(t *testing.T, id int64, start, end string, status model.ReservationStatus) model.Reservation {
	return model.Reservation{
		ID: id, INumber: owner, RoomID: "ENG101", EventName: "Lab",
		Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Window:      model.Window{Start: clock(t, start), End: clock(t, end)},
		PeopleCount: 4,
		Status:      status,
	}
}

func form(start, end string) ReservationForm {
	return ReservationForm{RoomID: "ENG101", Date: "2025-03-01", TimeStart: start, TimeEnd: end, EventName: "Standup", PeopleCount: "5"}
}

func newReservationFixture(t *testing.T, rows ...model.Reservation) (*ReservationService, *mockRooms, *mockUsers, *memReservations, *recordingPublisher) {
	rooms := new(mockRooms)
	users := new(mockUsers)
	store := newMemReservations(rows...)
	pub := &recordingPublisher{}
	users.On("PermissionOf", mock.Anything, owner).Return(model.PermissionStudent, nil).Maybe()
	users.On("PermissionOf", mock.Anything, stranger).Return(model.PermissionStudent, nil).Maybe()
	users.On("PermissionOf", mock.Anything, admin).Return(model.PermissionAdmin, nil).Maybe()
	rooms.On("GetByID", mock.Anything, "ENG101").Return(eng101, nil).Maybe()
	return NewReservationService(rooms, store, users, pub, nil), rooms, users, store, pub
}

func TestCreate_PendingAndPublished(t *testing.T) {
	svc, _, _, store, pub := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusPending))

	res, err := svc.Create(context.Background(), auth.Identity{INumber: owner}, form("13:00", "14:00"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.Equal(t, owner, res.INumber)
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, []queue.EventType{queue.ReservationCreated}, pub.types())
}

func TestCreate_OverlapConflicts(t *testing.T) {
	svc, _, _, store, pub := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusConfirmed))

	_, err := svc.Create(context.Background(), auth.Identity{INumber: owner}, form("12:30", "13:30"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Zero(t, store.writes)
	assert.Empty(t, pub.types())
}

func TestCreate_Validation(t *testing.T) {
	svc, rooms, _, store, _ := newReservationFixture(t)

	f := form("14:00", "13:00")
	f.EventName = ""
	_, err := svc.Create(context.Background(), auth.Identity{INumber: owner}, f)
	require.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Problems, "End time must be after start time.")
	assert.Contains(t, ve.Problems, "Event name is required and must be at most 45 characters.")
	rooms.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	assert.Zero(t, store.writes)
}

func TestCreate_OverCapacity(t *testing.T) {
	svc, _, _, store, _ := newReservationFixture(t)
	f := form("09:00", "10:00")
	f.PeopleCount = "21"

	_, err := svc.Create(context.Background(), auth.Identity{INumber: owner}, f)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Number of people exceeds the room's maximum occupancy of 20.")
	assert.Zero(t, store.writes)
}

func TestCreate_PermissionTooLow(t *testing.T) {
	svc, _, users, _, _ := newReservationFixture(t)
	const guest int64 = 444444444
	users.On("PermissionOf", mock.Anything, guest).Return(model.PermissionUser, nil)

	_, err := svc.Create(context.Background(), auth.Identity{INumber: guest, Permission: model.PermissionAdmin}, form("09:00", "10:00"))
	assert.ErrorIs(t, err, ErrForbidden, "the stored level wins over the session claim")
}

func TestCreate_UnknownRoom(t *testing.T) {
	svc, rooms, _, _, _ := newReservationFixture(t)
	rooms.On("GetByID", mock.Anything, "NOPE").Return(nil, repository.ErrNotFound)
	f := form("09:00", "10:00")
	f.RoomID = "NOPE"

	_, err := svc.Create(context.Background(), auth.Identity{INumber: owner}, f)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_ConcurrentOverlapOnlyOneWins(t *testing.T) {
	svc, _, _, store, _ := newReservationFixture(t)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), auth.Identity{INumber: owner}, form("10:00", "11:00"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, store.writes)
}

func TestConfirm_TransitionsOnce(t *testing.T) {
	svc, _, _, store, pub := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusPending))

	res, changed, err := svc.Confirm(context.Background(), auth.Identity{INumber: owner}, 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, res.Confirmed())

	res, changed, err = svc.Confirm(context.Background(), auth.Identity{INumber: owner}, 1)
	require.NoError(t, err, "confirming twice is not an error")
	assert.False(t, changed)
	assert.True(t, res.Confirmed())

	assert.Equal(t, 1, store.writes)
	assert.Equal(t, []queue.EventType{queue.ReservationConfirmed}, pub.types())
}

func TestConfirm_Authorization(t *testing.T) {
	svc, _, _, store, _ := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusPending))

	_, _, err := svc.Confirm(context.Background(), auth.Identity{INumber: stranger}, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, store.writes)

	_, changed, err := svc.Confirm(context.Background(), auth.Identity{INumber: admin}, 1)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestConfirm_Missing(t *testing.T) {
	svc, _, _, _, _ := newReservationFixture(t)
	_, _, err := svc.Confirm(context.Background(), auth.Identity{INumber: owner}, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel_MissingHasNoSideEffects(t *testing.T) {
	svc, _, _, store, pub := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusPending))

	_, err := svc.Cancel(context.Background(), auth.Identity{INumber: owner}, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.writes)
	assert.Empty(t, pub.types())
	assert.Len(t, store.rows, 1)
}

func TestCancel_ConfirmedReservationFreesWindow(t *testing.T) {
	svc, _, _, store, pub := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusConfirmed))

	res, err := svc.Cancel(context.Background(), auth.Identity{INumber: owner}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ID)
	assert.Empty(t, store.rows)
	assert.Equal(t, []queue.EventType{queue.ReservationCancelled}, pub.types())

	_, err = svc.Create(context.Background(), auth.Identity{INumber: stranger}, form("12:00", "13:00"))
	assert.NoError(t, err)
}

func TestCancel_Forbidden(t *testing.T) {
	svc, _, _, store, _ := newReservationFixture(t, booked(t, 1, "12:00", "13:00", model.StatusPending))

	_, err := svc.Cancel(context.Background(), auth.Identity{INumber: stranger}, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, store.rows, 1)
}

func TestCustomAuthorizerIsConsulted(t *testing.T) {
	rooms := new(mockRooms)
	users := new(mockUsers)
	users.On("PermissionOf", mock.Anything, admin).Return(model.PermissionAdmin, nil)
	store := newMemReservations(booked(t, 1, "12:00", "13:00", model.StatusPending))
	ownerOnly := func(a Actor, r model.Reservation) bool { return r.OwnedBy(a.INumber) }
	svc := NewReservationService(rooms, store, users, nil, ownerOnly)

	_, err := svc.Cancel(context.Background(), auth.Identity{INumber: admin}, 1)
	assert.ErrorIs(t, err, ErrForbidden)
}
