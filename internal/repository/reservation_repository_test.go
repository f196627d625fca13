package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i-reserve/room-reservation/internal/model"
)

var reservationCols = []string{"reserve_id", "i_number", "room_id", "event_name", "date", "time_start", "time_end", "event_desc", "people_count", "confirmed"}

func newReservation(t *testing.T, start, end string) *model.Reservation {
	return &model.Reservation{
		INumber:     123456789,
		RoomID:      "ENG101",
		EventName:   "Standup",
		Date:        *date(t, "2025-03-01"),
		Window:      *window(t, start, end),
		PeopleCount: 5,
	}
}

func expectRoomLock(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT room_id FROM room WHERE room_id = ? FOR UPDATE")).
		WithArgs("ENG101").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow("ENG101"))
}

func TestCreateIfAvailable_Inserts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	expectRoomLock(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT time_start, time_end FROM reservation WHERE room_id = ? AND date = ?")).
		WithArgs("ENG101", "2025-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"time_start", "time_end"}).AddRow("12:00:00", "13:00:00"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservation")).
		WithArgs(int64(123456789), "ENG101", "Standup", "2025-03-01", "13:00:00", "14:00:00", nil, 5, 0).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	res := newReservation(t, "13:00", "14:00")
	require.NoError(t, repo.CreateIfAvailable(context.Background(), res))
	assert.EqualValues(t, 42, res.ID)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailable_Overlap(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	expectRoomLock(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT time_start, time_end FROM reservation")).
		WithArgs("ENG101", "2025-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"time_start", "time_end"}).AddRow([]byte("12:00:00"), []byte("13:00:00")))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), newReservation(t, "12:30", "13:30"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfAvailable_UnknownRoom(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("ENG101").
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectRollback()

	err := repo.CreateIfAvailable(context.Background(), newReservation(t, "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func lockedRow(confirmed int64) *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(
		int64(7), int64(123456789), "ENG101", "Standup", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		"12:00:00", "13:00:00", nil, int64(5), confirmed)
}

func TestUpdateLocked_Confirm(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservation WHERE reserve_id = ? FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(lockedRow(0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservation SET confirmed = ? WHERE reserve_id = ?")).
		WithArgs(1, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.UpdateLocked(context.Background(), 7, func(r model.Reservation) (LockedAction, error) {
		assert.Equal(t, "12:00:00", r.Window.Start.String())
		return MarkConfirmed, nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocked_KeepDoesNotWrite(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).WillReturnRows(lockedRow(1))
	mock.ExpectCommit()

	got, err := repo.UpdateLocked(context.Background(), 7, func(model.Reservation) (LockedAction, error) { return Keep, nil })
	require.NoError(t, err)
	assert.True(t, got.Confirmed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocked_DecisionErrorRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)
	denied := errors.New("denied")

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).WillReturnRows(lockedRow(0))
	mock.ExpectRollback()

	_, err := repo.UpdateLocked(context.Background(), 7, func(model.Reservation) (LockedAction, error) { return Remove, denied })
	assert.ErrorIs(t, err, denied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocked_MissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows(reservationCols))
	mock.ExpectRollback()

	called := false
	_, err := repo.UpdateLocked(context.Background(), 99, func(model.Reservation) (LockedAction, error) {
		called = true
		return Remove, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocked_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(7)).WillReturnRows(lockedRow(1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservation WHERE reserve_id = ?")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.UpdateLocked(context.Background(), 7, func(model.Reservation) (LockedAction, error) { return Remove, nil })
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_Order(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE i_number = ? ORDER BY date DESC, time_start ASC")).
		WithArgs(int64(123456789)).
		WillReturnRows(lockedRow(1))

	got, err := repo.ListByUser(context.Background(), 123456789)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Confirmed", got[0].Status.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
