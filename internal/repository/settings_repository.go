package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

// SettingsRepo reads and updates pousada_settings.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// List returns every setting ordered by key.
func (r *SettingsRepo) List(ctx context.Context) ([]model.Setting, error) {
	const q = `SELECT setting_key, setting_value, description, updated_at FROM pousada_settings ORDER BY setting_key`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Setting{}
	for rows.Next() {
		var s model.Setting
		var value, desc sql.NullString
		if err := rows.Scan(&s.Key, &value, &desc, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Value = stringPtr(value)
		s.Description = stringPtr(desc)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Set updates the value of an existing key. Keys are created by migrations
// only, so an unknown key yields ErrNotFound.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	const q = `UPDATE pousada_settings SET setting_value = ? WHERE setting_key = ?`
	res, err := r.db.ExecContext(ctx, q, value, key)
	return affectedOrNotFound(res, err)
}

// Values returns the settings as a key/value map, skipping NULL values.
func (r *SettingsRepo) Values(ctx context.Context) (map[string]string, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for _, s := range all {
		if s.Value != nil {
			out[s.Key] = *s.Value
		}
	}
	return out, nil
}
