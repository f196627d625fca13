package repository

import (
	"context"
	"time"

	"github.com/i-reserve/room-reservation/internal/database"
	"github.com/i-reserve/room-reservation/internal/model"
)

// MessageRepo persists contact-form messages.
type MessageRepo struct {
	db *database.DB
}

func NewMessageRepo(db *database.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts m and sets its ID and CreatedAt.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	const q = "INSERT INTO message (i_number, return_email, message_title, message) VALUES (?, ?, ?, ?)"
	id, err := r.db.Dialect.InsertReturningID(ctx, r.db, q, "message_id", m.INumber, m.ReturnEmail, m.Title, m.Body)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrMissingReference
		}
		return err
	}
	m.ID = id
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}

// List returns all messages ordered by title.
func (r *MessageRepo) List(ctx context.Context) ([]model.Message, error) {
	const q = `SELECT message_id, i_number, return_email, message_title, message, created_at
	           FROM message ORDER BY message_title, message_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.INumber, &m.ReturnEmail, &m.Title, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
