package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/i-reserve/room-reservation/internal/database"
	"github.com/i-reserve/room-reservation/internal/model"
)

const reservationColumns = "reserve_id, i_number, room_id, event_name, date, time_start, time_end, event_desc, people_count, confirmed"

// ReservationRepo stores reservations.  Creation and state changes run
// inside transactions that hold a row lock, so the overlap check and the
// write it guards cannot interleave with a competing request.
type ReservationRepo struct {
	db *database.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *database.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateIfAvailable inserts res as a pending reservation unless another
// reservation of the same room on the same date intersects its window.
// The room row is locked for the duration of the transaction, which
// serialises concurrent creates for one room.  On success res.ID is set.
// Returns ErrNotFound when the room is missing and ErrConflict on overlap.
func (r *ReservationRepo) CreateIfAvailable(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, r.db.Rebind("SELECT room_id FROM room WHERE room_id = ? FOR UPDATE"), res.RoomID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock room: %w", err)
	}

	date := res.Date.Format(model.DateLayout)
	rows, err := tx.QueryContext(ctx,
		r.db.Rebind("SELECT time_start, time_end FROM reservation WHERE room_id = ? AND date = ?"),
		res.RoomID, date)
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}
	var clash bool
	for rows.Next() {
		var w model.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			rows.Close()
			return err
		}
		if w.Overlaps(res.Window) {
			clash = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if clash {
		return ErrConflict
	}

	const qInsert = `INSERT INTO reservation (i_number, room_id, event_name, date, time_start, time_end, event_desc, people_count, confirmed)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.db.Dialect.InsertReturningID(ctx, tx, qInsert, "reserve_id",
		res.INumber, res.RoomID, res.EventName, date, res.Window.Start, res.Window.End,
		nullString(res.Description), res.PeopleCount, int(model.StatusPending))
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	res.ID = id
	res.Status = model.StatusPending
	return nil
}

// LockedAction is what UpdateLocked should do with the locked row.
type LockedAction int

const (
	// Keep leaves the row untouched.
	Keep LockedAction = iota
	// MarkConfirmed sets confirmed = 1.
	MarkConfirmed
	// Remove deletes the row.
	Remove
)

// UpdateLocked loads reservation id with a row lock, asks decide what to
// do with it and applies the answer in the same transaction.  An error
// from decide aborts without writing.  It returns the row as it was read,
// or ErrNotFound when the id does not exist.
func (r *ReservationRepo) UpdateLocked(ctx context.Context, id int64, decide func(model.Reservation) (LockedAction, error)) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	q := "SELECT " + reservationColumns + " FROM reservation WHERE reserve_id = ? FOR UPDATE"
	res, err := scanReservation(tx.QueryRowContext(ctx, r.db.Rebind(q), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	action, err := decide(*res)
	if err != nil {
		return res, err
	}
	switch action {
	case MarkConfirmed:
		_, err = tx.ExecContext(ctx, r.db.Rebind("UPDATE reservation SET confirmed = ? WHERE reserve_id = ?"), int(model.StatusConfirmed), id)
	case Remove:
		_, err = tx.ExecContext(ctx, r.db.Rebind("DELETE FROM reservation WHERE reserve_id = ?"), id)
	}
	if err != nil {
		return res, err
	}
	if err := tx.Commit(); err != nil {
		return res, err
	}
	committed = true
	return res, nil
}

// ListByUser returns a user's reservations, newest date first and by start
// time within a date.
func (r *ReservationRepo) ListByUser(ctx context.Context, iNumber int64) ([]model.Reservation, error) {
	q := "SELECT " + reservationColumns + " FROM reservation WHERE i_number = ? ORDER BY date DESC, time_start ASC"
	return r.list(ctx, q, iNumber)
}

// ListByRoomAndDate returns the bookings of one room on one date ordered by
// start time.  The reserve page shows them next to the form.
func (r *ReservationRepo) ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]model.Reservation, error) {
	q := "SELECT " + reservationColumns + " FROM reservation WHERE room_id = ? AND date = ? ORDER BY time_start"
	return r.list(ctx, q, roomID, date.Format(model.DateLayout))
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		res    model.Reservation
		desc   sql.NullString
		status int
	)
	err := s.Scan(&res.ID, &res.INumber, &res.RoomID, &res.EventName, &res.Date,
		&res.Window.Start, &res.Window.End, &desc, &res.PeopleCount, &status)
	if err != nil {
		return nil, err
	}
	res.Description = desc.String
	res.Status = model.ReservationStatus(status)
	return &res, nil
}
