package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/i-reserve/room-reservation/internal/database"
	"github.com/i-reserve/room-reservation/internal/model"
)

const userColumns = "i_number, fname, lname, email, password, permission_id"

type UserRepo struct{ db *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user.  Email is normalized; a taken email or i_number
// yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	const q = "INSERT INTO users (" + userColumns + ") VALUES (?,?,?,?,?,?)"
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		u.INumber, u.FirstName, u.LastName, normalizeEmail(u.Email), u.PasswordHash, int(u.Permission))
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Upsert inserts the user or overwrites the row with the same i_number.
// Moving to an email owned by another user yields ErrDuplicate.
func (r *UserRepo) Upsert(ctx context.Context, u model.User) error {
	q := r.db.Dialect.Upsert("users", "i_number", "fname", "lname", "email", "password", "permission_id")
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		u.INumber, u.FirstName, u.LastName, normalizeEmail(u.Email), u.PasswordHash, int(u.Permission))
	if database.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = "SELECT " + userColumns + " FROM users WHERE LOWER(email) = ? LIMIT 1"
	return r.get(ctx, q, normalizeEmail(email))
}

// GetByINumber fetches a user by primary key.
func (r *UserRepo) GetByINumber(ctx context.Context, iNumber int64) (*model.User, error) {
	const q = "SELECT " + userColumns + " FROM users WHERE i_number = ? LIMIT 1"
	return r.get(ctx, q, iNumber)
}

// PermissionOf re-reads the stored permission level of a user.
func (r *UserRepo) PermissionOf(ctx context.Context, iNumber int64) (model.Permission, error) {
	const q = "SELECT permission_id FROM users WHERE i_number = ?"
	var p int
	if err := r.db.QueryRowContext(ctx, r.db.Rebind(q), iNumber).Scan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return model.Permission(p), nil
}

// List returns every user ordered by i_number.  Password hashes are not
// selected.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	const q = "SELECT i_number, fname, lname, email, permission_id FROM users ORDER BY i_number"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var (
			u    model.User
			perm int
		)
		if err := rows.Scan(&u.INumber, &u.FirstName, &u.LastName, &u.Email, &perm); err != nil {
			return nil, err
		}
		u.Permission = model.Permission(perm)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Profile is a user joined with the name of its permission level.
type Profile struct {
	User           model.User
	PermissionName string
}

// GetProfile loads the profile header for a user.
func (r *UserRepo) GetProfile(ctx context.Context, iNumber int64) (*Profile, error) {
	const q = `SELECT u.i_number, u.fname, u.lname, u.email, u.permission_id, p.permission_name
	           FROM users u JOIN permissions p ON p.permission_id = u.permission_id
	           WHERE u.i_number = ?`
	var (
		p    Profile
		perm int
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(q), iNumber).
		Scan(&p.User.INumber, &p.User.FirstName, &p.User.LastName, &p.User.Email, &perm, &p.PermissionName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.User.Permission = model.Permission(perm)
	return &p, nil
}

func (r *UserRepo) get(ctx context.Context, q string, arg any) (*model.User, error) {
	var (
		u    model.User
		perm int
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(q), arg).
		Scan(&u.INumber, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &perm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Permission = model.Permission(perm)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
