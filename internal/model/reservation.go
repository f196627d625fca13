package model

import "time"

// ReservationStatus is derived from the `confirmed` column.  Cancelled
// reservations are deleted, so only two persisted states exist.
type ReservationStatus int

const (
	StatusPending   ReservationStatus = 0
	StatusConfirmed ReservationStatus = 1
)

// String returns the label shown on the profile page.
func (s ReservationStatus) String() string {
	if s == StatusConfirmed {
		return "Confirmed"
	}
	return "Pending"
}

// Reservation records a user's booking of a room for a time window on a
// date.
//
// Fields:
//  ID          – primary key identifier.
//  INumber     – owning user.
//  RoomID      – reserved room.
//  EventName   – short event title.
//  Date        – calendar date (time of day is zero, UTC).
//  Window      – [time_start, time_end) on Date.
//  Description – optional event description.
//  PeopleCount – expected head count.
//  Status      – pending or confirmed.
type Reservation struct {
	ID          int64             // reservation.reserve_id
	INumber     int64             // reservation.i_number
	RoomID      string            // reservation.room_id
	EventName   string            // reservation.event_name
	Date        time.Time         // reservation.date
	Window      Window            // reservation.time_start, reservation.time_end
	Description string            // reservation.event_desc (nullable)
	PeopleCount int               // reservation.people_count
	Status      ReservationStatus // reservation.confirmed
}

// Confirmed reports whether the reservation has been confirmed.
func (r Reservation) Confirmed() bool { return r.Status == StatusConfirmed }

// OwnedBy reports whether the given user owns the reservation.
func (r Reservation) OwnedBy(iNumber int64) bool { return r.INumber == iNumber }
