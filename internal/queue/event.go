// Package queue defines the lifecycle events exchanged over RabbitMQ and
// the publisher and consumer that move them.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/i-reserve/room-reservation/internal/model"
)

// EventsQueue is the durable queue every event is routed to.
const EventsQueue = "ireserve.events"

// EventType names what happened.
type EventType string

const (
	ReservationCreated   EventType = "reservation.created"
	ReservationConfirmed EventType = "reservation.confirmed"
	ReservationCancelled EventType = "reservation.cancelled"
	MessageReceived      EventType = "message.received"
)

// Event carries enough of the affected row for the consumer to write an
// audit line without querying the database.  Cancelled reservations no
// longer exist in the store, so this payload is their only record.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	OccurredAt    string    `json:"occurred_at"`
	Actor         int64     `json:"actor"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	Owner         int64     `json:"owner,omitempty"`
	RoomID        string    `json:"room_id,omitempty"`
	EventName     string    `json:"event_name,omitempty"`
	Date          string    `json:"date,omitempty"`
	TimeStart     string    `json:"time_start,omitempty"`
	TimeEnd       string    `json:"time_end,omitempty"`
	PeopleCount   int       `json:"people_count,omitempty"`
	MessageID     int64     `json:"message_id,omitempty"`
	MessageTitle  string    `json:"message_title,omitempty"`
}

func newEvent(t EventType, actor int64) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Actor:      actor,
	}
}

// NewReservationEvent describes a reservation transition performed by actor.
func NewReservationEvent(t EventType, actor int64, r model.Reservation) Event {
	ev := newEvent(t, actor)
	ev.ReservationID = r.ID
	ev.Owner = r.INumber
	ev.RoomID = r.RoomID
	ev.EventName = r.EventName
	ev.Date = r.Date.Format(model.DateLayout)
	ev.TimeStart = r.Window.Start.Short()
	ev.TimeEnd = r.Window.End.Short()
	ev.PeopleCount = r.PeopleCount
	return ev
}

// NewMessageEvent describes a contact message submitted by actor.
func NewMessageEvent(actor int64, m model.Message) Event {
	ev := newEvent(MessageReceived, actor)
	ev.MessageID = m.ID
	ev.MessageTitle = m.Title
	return ev
}

// LogLine renders the single-line audit record written by the consumer.
func (e Event) LogLine() string {
	switch e.Type {
	case MessageReceived:
		return fmt.Sprintf("[%s] %s | message_id=%d | from=%d | title=%q\n",
			e.OccurredAt, e.Type, e.MessageID, e.Actor, e.MessageTitle)
	default:
		return fmt.Sprintf("[%s] %s | reservation_id=%d | actor=%d | owner=%d | room=%s | date=%s | window=%s-%s | event=%q | people=%d\n",
			e.OccurredAt, e.Type, e.ReservationID, e.Actor, e.Owner, e.RoomID, e.Date, e.TimeStart, e.TimeEnd, e.EventName, e.PeopleCount)
	}
}
