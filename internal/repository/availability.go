package repository

import (
	"context"
	"strings"
	"time"

	"github.com/i-reserve/room-reservation/internal/model"
)

// AvailabilityQuery defines the optional filters of the availability
// search.  Zero values mean "not supplied".  The time window filter is
// applied only when Date and Window are both set.
type AvailabilityQuery struct {
	Building string
	Floors   []int
	Date     *time.Time
	Window   *model.Window
}

// windowApplies reports whether the reservation exclusion is active.
func (q AvailabilityQuery) windowApplies() bool {
	return q.Date != nil && q.Window != nil
}

// BuildAvailability assembles the room search statement.  Building and
// floor filters are ANDed; floors among themselves are ORed.  When the
// window applies, rooms holding any reservation on that date whose
// interval intersects [start, end) are excluded regardless of
// confirmation.  Results are ordered by building then room.
func BuildAvailability(q AvailabilityQuery) (string, []any) {
	where := []string{}
	args := []any{}

	if b := strings.TrimSpace(q.Building); b != "" {
		where = append(where, "UPPER(building_id) LIKE ?")
		args = append(args, "%"+strings.ToUpper(b)+"%")
	}
	if len(q.Floors) > 0 {
		ors := make([]string, len(q.Floors))
		for i, f := range q.Floors {
			ors[i] = "floor_number = ?"
			args = append(args, f)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if q.windowApplies() {
		where = append(where, `room_id NOT IN (
			SELECT room_id FROM reservation
			WHERE date = ? AND NOT (time_end <= ? OR time_start >= ?))`)
		args = append(args, q.Date.Format(model.DateLayout), q.Window.Start, q.Window.End)
	}

	stmt := "SELECT " + roomColumns + " FROM room"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY building_id, room_id"
	return stmt, args
}

// SearchAvailable runs the availability search.
func (r *RoomRepo) SearchAvailable(ctx context.Context, q AvailabilityQuery) ([]model.Room, error) {
	stmt, args := BuildAvailability(q)
	return r.query(ctx, stmt, args...)
}
