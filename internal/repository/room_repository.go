package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/i-reserve/room-reservation/internal/database"
	"github.com/i-reserve/room-reservation/internal/model"
)

const roomColumns = "room_id, building_id, floor_number, max_occupancy, room_desc, permission_id"

// RoomRepo provides methods to upsert, look up and search rooms.
type RoomRepo struct {
	db *database.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *database.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Upsert inserts the room or overwrites every column of an existing room
// with the same code.  A building code that does not exist yields
// ErrMissingReference.
func (r *RoomRepo) Upsert(ctx context.Context, room model.Room) error {
	q := r.db.Dialect.Upsert("room", "room_id", "building_id", "floor_number", "max_occupancy", "room_desc", "permission_id")
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		room.ID, room.BuildingID, room.FloorNumber, room.MaxOccupancy, nullString(room.Description), int(room.Permission))
	if database.IsForeignKeyViolation(err) {
		return ErrMissingReference
	}
	return err
}

// GetByID retrieves a room by code.  It returns ErrNotFound when no row is
// found.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	q := "SELECT " + roomColumns + " FROM room WHERE room_id = ?"
	room, err := scanRoom(r.db.QueryRowContext(ctx, r.db.Rebind(q), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

// List returns all rooms ordered by building and room code.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	return r.query(ctx, "SELECT "+roomColumns+" FROM room ORDER BY building_id, room_id")
}

func (r *RoomRepo) query(ctx context.Context, q string, args ...any) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		room model.Room
		desc sql.NullString
		perm int
	)
	if err := s.Scan(&room.ID, &room.BuildingID, &room.FloorNumber, &room.MaxOccupancy, &desc, &perm); err != nil {
		return nil, err
	}
	room.Description = desc.String
	room.Permission = model.Permission(perm)
	return &room, nil
}

// nullString maps an empty optional text field to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
