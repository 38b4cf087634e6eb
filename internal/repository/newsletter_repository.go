package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

// NewsletterRepo stores newsletter sign-ups.
type NewsletterRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewNewsletterRepo(db *sql.DB) *NewsletterRepo {
	return &NewsletterRepo{db: db, now: time.Now}
}

// Subscribe inserts email. An address already on the list yields
// ErrEmailExists.
func (r *NewsletterRepo) Subscribe(ctx context.Context, email string) (model.NewsletterSubscription, error) {
	created := r.now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscriptions (email, created_at) VALUES (?, ?)`, email, created)
	if IsDuplicateKey(err) {
		return model.NewsletterSubscription{}, ErrEmailExists
	}
	if err != nil {
		return model.NewsletterSubscription{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.NewsletterSubscription{}, err
	}
	return model.NewsletterSubscription{ID: uint64(id), Email: email, CreatedAt: created}, nil
}

// List returns subscriptions newest first. A non-empty search matches part
// of the address.
func (r *NewsletterRepo) List(ctx context.Context, search string) ([]model.NewsletterSubscription, error) {
	q := qb.Select("id", "email", "created_at").From("newsletter_subscriptions")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where(sq.Like{"email": "%" + strings.ToLower(s) + "%"})
	}
	query, args, err := q.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.NewsletterSubscription{}
	for rows.Next() {
		var s model.NewsletterSubscription
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
