package repository

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

var roomColumns = []string{
	"id", "name", "description", "price", "max_guests",
	"amenities", "images", "active", "created_at", "updated_at",
}

// RoomRepo reads the room catalog and answers availability questions.
type RoomRepo struct {
	db      *sql.DB
	overlap Overlap
}

// NewRoomRepo returns a RoomRepo that filters availability with the given
// overlap rule.
func NewRoomRepo(db *sql.DB, overlap Overlap) *RoomRepo {
	return &RoomRepo{db: db, overlap: overlap}
}

// ListActive returns active rooms ordered by id. When stay is non-nil,
// rooms holding a non-cancelled reservation that overlaps it are left out.
func (r *RoomRepo) ListActive(ctx context.Context, stay *DateRange) ([]model.Room, error) {
	q := qb.Select(roomColumns...).From("rooms").Where(sq.Eq{"active": true})
	if stay != nil {
		sub, subArgs, err := qb.Select("room_id").From("reservations").
			Where(blocking).
			Where(r.overlap.Cond(*stay)).
			ToSql()
		if err != nil {
			return nil, err
		}
		q = q.Where(sq.Expr("id NOT IN ("+sub+")", subArgs...))
	}
	query, args, err := q.OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Room, 0, 8)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// GetByID returns an active room. Unknown and inactive rooms both yield
// ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (model.Room, error) {
	query, args, err := qb.Select(roomColumns...).From("rooms").
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return model.Room{}, err
	}
	room, err := scanRoom(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	return room, err
}

// LockTx reads a room, active or not, with a row lock held until tx ends.
// Bookings of the same room are serialized behind this lock.
func (r *RoomRepo) LockTx(ctx context.Context, tx *sql.Tx, id string) (model.Room, error) {
	query, args, err := qb.Select(roomColumns...).From("rooms").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return model.Room{}, err
	}
	room, err := scanRoom(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	return room, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (model.Room, error) {
	var (
		room model.Room
		desc sql.NullString
	)
	err := row.Scan(
		&room.ID, &room.Name, &desc, &room.Price, &room.MaxGuests,
		&room.Amenities, &room.Images, &room.Active, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return model.Room{}, err
	}
	if desc.Valid {
		d := desc.String
		room.Description = &d
	}
	return room, nil
}
