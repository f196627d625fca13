package service

import (
	"context"

	"github.com/i-reserve/room-reservation/internal/model"
	"github.com/i-reserve/room-reservation/internal/repository"
)

// ProfilePage is the data behind /profile.
type ProfilePage struct {
	Profile      repository.Profile
	Reservations []model.Reservation
}

type ProfileService struct {
	users        UserStore
	reservations ReservationStore
}

func NewProfileService(users UserStore, reservations ReservationStore) *ProfileService {
	return &ProfileService{users: users, reservations: reservations}
}

// Load returns the user's details and reservations, latest date first.
func (s *ProfileService) Load(ctx context.Context, iNumber int64) (*ProfilePage, error) {
	p, err := s.users.GetProfile(ctx, iNumber)
	if err != nil {
		return nil, mapNotFound(err)
	}
	res, err := s.reservations.ListByUser(ctx, iNumber)
	if err != nil {
		return nil, err
	}
	return &ProfilePage{Profile: *p, Reservations: res}, nil
}
