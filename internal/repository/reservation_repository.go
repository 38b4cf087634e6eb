package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

var reservationColumns = []string{
	"id", "guest_name", "contact_email", "contact_phone", "room_id", "room_name",
	"check_in", "check_out", "guests", "special_requests", "total_price",
	"status", "payment_status", "notes", "created_at", "updated_at",
}

// ReservationRepo provides persistence for reservations and their history.
// Write paths take a *sql.Tx so that the caller can combine the room lock,
// the conflict check and the insert atomically.
type ReservationRepo struct {
	db      *sql.DB
	overlap Overlap
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB, overlap Overlap) *ReservationRepo {
	return &ReservationRepo{db: db, overlap: overlap}
}

// DB exposes the handle so callers can begin transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// HasConflictTx reports whether a non-cancelled reservation of roomID
// overlaps stay. excludeID skips the reservation being edited.
func (r *ReservationRepo) HasConflictTx(ctx context.Context, tx *sql.Tx, roomID string, stay DateRange, excludeID string) (bool, error) {
	q := qb.Select("1").From("reservations").
		Where(sq.Eq{"room_id": roomID}).
		Where(blocking).
		Where(r.overlap.Cond(stay))
	if excludeID != "" {
		q = q.Where(sq.NotEq{"id": excludeID})
	}
	query, args, err := q.Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NextSequenceTx reserves the next sequence number of year. The counter row
// in reservation_sequences stays locked until tx ends and only moves
// forward, so a number is never handed out twice even after the newest
// reservation is deleted. Ids written outside the counter (imports, older
// rows) are skipped by taking the highest stored sequence as a floor.
func (r *ReservationRepo) NextSequenceTx(ctx context.Context, tx *sql.Tx, year int, prefix string) (int, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO reservation_sequences (year, last_seq) VALUES (?, 0)`, year); err != nil {
		return 0, err
	}
	var last int
	if err := tx.QueryRowContext(ctx,
		`SELECT last_seq FROM reservation_sequences WHERE year = ? FOR UPDATE`, year).Scan(&last); err != nil {
		return 0, err
	}
	stored, err := r.MaxSequenceTx(ctx, tx, prefix)
	if err != nil {
		return 0, err
	}
	next := max(last, stored) + 1
	if _, err := tx.ExecContext(ctx,
		`UPDATE reservation_sequences SET last_seq = ? WHERE year = ?`, next, year); err != nil {
		return 0, err
	}
	return next, nil
}

// MaxSequenceTx returns the highest sequence number used by ids starting
// with prefix (e.g. RSV2025), or 0 when the year has no reservations.
func (r *ReservationRepo) MaxSequenceTx(ctx context.Context, tx *sql.Tx, prefix string) (int, error) {
	const q = `SELECT COALESCE(MAX(CAST(SUBSTRING(id, ?) AS UNSIGNED)), 0) FROM reservations WHERE id LIKE ?`
	var seq int
	err := tx.QueryRowContext(ctx, q, len(prefix)+1, prefix+"%").Scan(&seq)
	return seq, err
}

// InsertTx stores a new reservation. A colliding id yields ErrDuplicateID.
func (r *ReservationRepo) InsertTx(ctx context.Context, tx *sql.Tx, res model.Reservation) error {
	const q = `INSERT INTO reservations (
		id, guest_name, contact_email, contact_phone, room_id, room_name,
		check_in, check_out, guests, special_requests, total_price, status, payment_status, notes
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		res.ID, res.GuestName, res.ContactEmail, res.ContactPhone, res.RoomID, res.RoomName,
		res.CheckIn.Format(time.DateOnly), res.CheckOut.Format(time.DateOnly),
		res.Guests, nullString(res.SpecialRequests), res.TotalPrice,
		res.Status, res.PaymentStatus, nullString(res.Notes),
	)
	if IsDuplicateKey(err) {
		return ErrDuplicateID
	}
	return err
}

// GetByID loads one reservation or returns ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (model.Reservation, error) {
	return r.get(ctx, r.db, id, false)
}

// GetForUpdateTx loads one reservation and locks its row until tx ends.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (model.Reservation, error) {
	return r.get(ctx, tx, id, true)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *ReservationRepo) get(ctx context.Context, db queryRower, id string, lock bool) (model.Reservation, error) {
	q := qb.Select(reservationColumns...).From("reservations").Where(sq.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	res, err := scanReservation(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// ReservationFilter narrows List. Status "all" or empty disables the status
// filter; Search matches guest name, id and room name.
type ReservationFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// List returns reservations newest first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	q := qb.Select(reservationColumns...).From("reservations")
	if f.Status != "" && f.Status != "all" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(sq.Or{
			sq.Like{"guest_name": pattern},
			sq.Like{"id": pattern},
			sq.Like{"room_name": pattern},
		})
	}
	query, args, err := q.OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0, f.Limit)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Stats aggregates counts by status and the confirmed revenue over all
// reservations.
func (r *ReservationRepo) Stats(ctx context.Context) (model.ReservationStats, error) {
	const q = `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'confirmed' THEN total_price ELSE 0 END), 0)
	FROM reservations`
	var s model.ReservationStats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.Total, &s.Confirmed, &s.Pending, &s.Cancelled, &s.TotalRevenue)
	return s, err
}

// UpdateTx replaces the editable fields of a reservation.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, res model.Reservation) error {
	const q = `UPDATE reservations SET
		guest_name = ?, contact_email = ?, contact_phone = ?, room_name = ?,
		check_in = ?, check_out = ?, guests = ?, special_requests = ?,
		total_price = ?, notes = ?, updated_at = NOW()
	WHERE id = ?`
	result, err := tx.ExecContext(ctx, q,
		res.GuestName, res.ContactEmail, res.ContactPhone, res.RoomName,
		res.CheckIn.Format(time.DateOnly), res.CheckOut.Format(time.DateOnly),
		res.Guests, nullString(res.SpecialRequests), res.TotalPrice, nullString(res.Notes),
		res.ID,
	)
	return affectedOrNotFound(result, err)
}

// UpdateStatusTx sets the status of one reservation.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	const q = `UPDATE reservations SET status = ?, updated_at = NOW() WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, status, id)
	return affectedOrNotFound(result, err)
}

// DeleteTx removes a reservation permanently.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	result, err := tx.ExecContext(ctx, q, id)
	return affectedOrNotFound(result, err)
}

// FinishedStaysTx locks confirmed reservations whose check-out is before
// today and returns their ids.
func (r *ReservationRepo) FinishedStaysTx(ctx context.Context, tx *sql.Tx, today time.Time) ([]string, error) {
	const q = `SELECT id FROM reservations WHERE status = 'confirmed' AND check_out < ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, today.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddHistory appends an audit entry. Pass a *sql.Tx to make it part of the
// change it describes.
func (r *ReservationRepo) AddHistory(ctx context.Context, db execer, h model.ReservationHistory) error {
	const q = `INSERT INTO reservation_history (reservation_id, action, old_status, new_status, user_id, notes)
		VALUES (?, ?, ?, ?, ?, ?)`
	var uid sql.NullInt64
	if h.UserID != nil {
		uid = sql.NullInt64{Int64: int64(*h.UserID), Valid: true}
	}
	_, err := db.ExecContext(ctx, q,
		h.ReservationID, h.Action, nullString(h.OldStatus), nullString(h.NewStatus), uid, nullString(h.Notes))
	return err
}

// History lists audit entries of a reservation, oldest first.
func (r *ReservationRepo) History(ctx context.Context, id string) ([]model.ReservationHistory, error) {
	const q = `SELECT id, reservation_id, action, old_status, new_status, user_id, notes, created_at
		FROM reservation_history WHERE reservation_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ReservationHistory{}
	for rows.Next() {
		var h model.ReservationHistory
		var oldSt, newSt, notes sql.NullString
		var uid sql.NullInt64
		if err := rows.Scan(&h.ID, &h.ReservationID, &h.Action, &oldSt, &newSt, &uid, &notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.OldStatus = stringPtr(oldSt)
		h.NewStatus = stringPtr(newSt)
		h.Notes = stringPtr(notes)
		if uid.Valid {
			u := uint64(uid.Int64)
			h.UserID = &u
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpcomingArrivals reads the upcoming_arrivals view: confirmed check-ins
// within the next seven days.
func (r *ReservationRepo) UpcomingArrivals(ctx context.Context) ([]model.Arrival, error) {
	cols := append(append([]string{}, reservationColumns...), "nights", "days_until_arrival")
	query, args, err := qb.Select(cols...).From("upcoming_arrivals").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Arrival{}
	for rows.Next() {
		var a model.Arrival
		res, err := scanReservation(rows, &a.Nights, &a.DaysUntilArrival)
		if err != nil {
			return nil, err
		}
		a.Reservation = res
		out = append(out, a)
	}
	return out, rows.Err()
}

// scanReservation reads reservationColumns followed by any extra columns.
func scanReservation(row rowScanner, extra ...any) (model.Reservation, error) {
	var res model.Reservation
	var special, notes, status, paymentStatus sql.NullString
	dest := []any{
		&res.ID, &res.GuestName, &res.ContactEmail, &res.ContactPhone, &res.RoomID, &res.RoomName,
		&res.CheckIn, &res.CheckOut, &res.Guests, &special, &res.TotalPrice,
		&status, &paymentStatus, &notes, &res.CreatedAt, &res.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return model.Reservation{}, err
	}
	res.SpecialRequests = stringPtr(special)
	res.Notes = stringPtr(notes)
	res.Status = model.StatusPending
	if status.Valid {
		res.Status = status.String
	}
	res.PaymentStatus = model.PaymentPending
	if paymentStatus.Valid {
		res.PaymentStatus = paymentStatus.String
	}
	return res, nil
}

func affectedOrNotFound(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
