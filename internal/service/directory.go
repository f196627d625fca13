package service

import (
	"context"
	"strings"

	"github.com/i-reserve/room-reservation/internal/metrics"
	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/repository"
)

// AvailabilityForm is the raw query string of the availability page.
type AvailabilityForm struct {
	Building  string
	Floors    []string
	Date      string
	TimeStart string
	TimeEnd   string
}

// Availability is a search result together with the filters that were
// applied, for echoing back into the form.
type Availability struct {
	Rooms         []model.Room
	Building      string
	Floors        []int
	WindowApplied bool
}

// DirectoryService answers the public read-only questions: which rooms are
// free and which buildings exist.
type DirectoryService struct {
	rooms     RoomStore
	buildings BuildingStore
}

func NewDirectoryService(rooms RoomStore, buildings BuildingStore) *DirectoryService {
	return &DirectoryService{rooms: rooms, buildings: buildings}
}

// Parse validates the form into a query.  Floors must be non-negative
// integers.  The time window is used only when date, start and end are all
// present, in which case end must follow start.
func (f AvailabilityForm) Parse() (repository.AvailabilityQuery, error) {
	var (
		p problems
		q repository.AvailabilityQuery
	)
	q.Building = strings.TrimSpace(f.Building)

	for _, raw := range f.Floors {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		n, ok := parseInt(raw)
		if !ok || n < 0 {
			p.check(false, "Floor must be a non-negative integer.")
			break
		}
		q.Floors = append(q.Floors, n)
	}

	date, start, end := strings.TrimSpace(f.Date), strings.TrimSpace(f.TimeStart), strings.TrimSpace(f.TimeEnd)
	if date != "" {
		d, err := model.ParseDate(date)
		p.check(err == nil, "Date must be in YYYY-MM-DD format.")
		if err == nil {
			q.Date = &d
		}
	}
	var w model.Window
	var errStart, errEnd error
	if start != "" {
		w.Start, errStart = model.ParseClock(start)
		p.check(errStart == nil, "Start time must be a valid 24-hour format (HH:MM or HH:MM:SS).")
	}
	if end != "" {
		w.End, errEnd = model.ParseClock(end)
		p.check(errEnd == nil, "End time must be a valid 24-hour format (HH:MM or HH:MM:SS).")
	}
	if date != "" && start != "" && end != "" && errStart == nil && errEnd == nil {
		p.check(w.Valid(), "End time must be after start time.")
		q.Window = &w
	}
	if q.Window == nil {
		q.Date = nil
	}
	return q, p.err()
}

// Search runs the availability query described by form.
func (s *DirectoryService) Search(ctx context.Context, form AvailabilityForm) (*Availability, error) {
	q, err := form.Parse()
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.SearchAvailable(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.AvailabilitySearches.Inc()
	return &Availability{Rooms: rooms, Building: q.Building, Floors: q.Floors, WindowApplied: q.Window != nil}, nil
}

// Buildings lists every building with its opening hours.
func (s *DirectoryService) Buildings(ctx context.Context) ([]model.Building, error) {
	return s.buildings.List(ctx)
}

// Room looks up a single room.
func (s *DirectoryService) Room(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return room, nil
}
