// This file defines the building repository.  Buildings are keyed by a
// three letter code and carry opening hours shown in the directory.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"

	"github.com/i-reserve/room-reservation/internal/database"
	"github.com/i-reserve/room-reservation/internal/model"
)

// BuildingRepo encapsulates all queries against the building table.
type BuildingRepo struct {
	db *database.DB // db is the underlying connection pool and its dialect
}

// NewBuildingRepo constructs a BuildingRepo with the provided DB handle.
func NewBuildingRepo(db *database.DB) *BuildingRepo {
	return &BuildingRepo{db: db}
}

// Upsert inserts the building or, when the code already exists, replaces
// its name and hours.
func (r *BuildingRepo) Upsert(ctx context.Context, b model.Building) error {
	q := r.db.Dialect.Upsert("building", "building_id", "building_name", "time_open", "time_closed")
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q), b.ID, b.Name, b.TimeOpen, b.TimeClosed)
	return err
}

// GetByID fetches a building by code.  It returns ErrNotFound if no row
// matches.
func (r *BuildingRepo) GetByID(ctx context.Context, id string) (*model.Building, error) {
	const q = "SELECT building_id, building_name, time_open, time_closed FROM building WHERE building_id = ?"
	var b model.Building
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(q), id).Scan(&b.ID, &b.Name, &b.TimeOpen, &b.TimeClosed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns every building ordered by code.
func (r *BuildingRepo) List(ctx context.Context) ([]model.Building, error) {
	const q = "SELECT building_id, building_name, time_open, time_closed FROM building ORDER BY building_id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Building
	for rows.Next() {
		var b model.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.TimeOpen, &b.TimeClosed); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
