package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

// MessageRepo persists contact form submissions.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo constructs a MessageRepo given a DB handle.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and returns it with its id and timestamp.
func (r *MessageRepo) Create(ctx context.Context, m model.ContactMessage) (model.ContactMessage, error) {
	const q = `INSERT INTO contact_messages (sender, email, subject, content, created_at) VALUES (?, ?, ?, ?, UTC_TIMESTAMP())`
	res, err := r.db.ExecContext(ctx, q, m.Sender, m.Email, m.Subject, m.Content)
	if err != nil {
		return model.ContactMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ContactMessage{}, err
	}
	m.ID = uint64(id)
	return m, nil
}

// List returns messages newest first, optionally only unread ones.
func (r *MessageRepo) List(ctx context.Context, unreadOnly bool) ([]model.ContactMessage, error) {
	q := `SELECT id, sender, email, subject, content, is_read, reply_sent, created_at FROM contact_messages`
	if unreadOnly {
		q += ` WHERE is_read = FALSE`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		var isRead, replySent sql.NullBool
		if err := rows.Scan(&m.ID, &m.Sender, &m.Email, &m.Subject, &m.Content, &isRead, &replySent, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.IsRead = isRead.Bool
		m.ReplySent = replySent.Bool
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a message as read. Unknown ids yield ErrNotFound.
func (r *MessageRepo) MarkRead(ctx context.Context, id uint64) error {
	const q = `UPDATE contact_messages SET is_read = TRUE WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	return affectedOrNotFound(res, err)
}
