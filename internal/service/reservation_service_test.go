package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/queue"
	"github.com/iliyamo/pousada-reservation/internal/repository"
)

var (
	reservationCols = []string{
		"id", "guest_name", "contact_email", "contact_phone", "room_id", "room_name",
		"check_in", "check_out", "guests", "special_requests", "total_price",
		"status", "payment_status", "notes", "created_at", "updated_at",
	}
	roomCols = []string{
		"id", "name", "description", "price", "max_guests",
		"amenities", "images", "active", "created_at", "updated_at",
	}
	fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
)

const (
	lockRoomSQL      = `FROM rooms WHERE id = \? FOR UPDATE`
	conflictSQL      = `SELECT 1 FROM reservations WHERE room_id = \? AND status <> \? AND \(check_in < \? AND check_out > \?\)`
	seqInitSQL       = `INSERT IGNORE INTO reservation_sequences \(year, last_seq\) VALUES \(\?, 0\)`
	seqLockSQL       = `SELECT last_seq FROM reservation_sequences WHERE year = \? FOR UPDATE`
	seqBumpSQL       = `UPDATE reservation_sequences SET last_seq = \? WHERE year = \?`
	maxSeqSQL        = `SELECT COALESCE\(MAX\(CAST\(SUBSTRING\(id, \?\) AS UNSIGNED\)\), 0\) FROM reservations WHERE id LIKE \?`
	insertSQL        = `INSERT INTO reservations`
	historySQL       = `INSERT INTO reservation_history`
	lockReservation  = `FROM reservations WHERE id = \? FOR UPDATE`
	updateStatusSQL  = `UPDATE reservations SET status = \?, updated_at = NOW\(\) WHERE id = \?`
	deleteSQL        = `DELETE FROM reservations WHERE id = \?`
	getReservation   = `FROM reservations WHERE id = \?`
	finishedStaysSQL = `SELECT id FROM reservations WHERE status = 'confirmed' AND check_out < \? FOR UPDATE`
)

type recorder struct {
	mu       sync.Mutex
	created  []model.Reservation
	changed  []model.Reservation
	messages []model.ContactMessage
	events   []queue.ReservationEvent
	flushes  int
}

func (r *recorder) ReservationCreated(res model.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, res)
}

func (r *recorder) StatusChanged(res model.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, res)
}

func (r *recorder) MessageReceived(m model.ContactMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recorder) Publish(_ context.Context, ev queue.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Invalidate(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

func newTestService(t *testing.T) (*ReservationService, sqlmock.Sqlmock, *recorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec := &recorder{}
	overlap := repository.Overlap{}
	svc := NewReservationService(
		repository.NewRoomRepo(db, overlap),
		repository.NewReservationRepo(db, overlap),
		ReservationOptions{
			IDRetries: 3,
			Now:       func() time.Time { return fixedNow },
			Notifier:  rec,
			Events:    rec,
			Cache:     rec,
		},
	)
	return svc, mock, rec
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func roomRow(active bool) *sqlmock.Rows {
	return sqlmock.NewRows(roomCols).AddRow(
		"room-001", "Suíte Premium", "Vista para a montanha", 550.0, int64(2),
		[]byte(`["WiFi gratuito","Varanda"]`), []byte(`[]`), active, fixedNow, fixedNow,
	)
}

func reservationRow(id, status string) *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(
		id, "Maria Silva", "maria@example.com", "21999990000", "room-001", "Suíte Premium",
		day(2025, 6, 10), day(2025, 6, 12), int64(2), nil, 1100.0,
		status, "pending", nil, fixedNow, fixedNow,
	)
}

func createInput() CreateInput {
	clientTotal := 999.0
	return CreateInput{
		GuestName:    "Maria Silva",
		ContactEmail: "maria@example.com",
		ContactPhone: "21999990000",
		RoomID:       "room-001",
		CheckIn:      day(2025, 6, 10),
		CheckOut:     day(2025, 6, 12),
		Adults:       1,
		Children:     1,
		ClientTotal:  &clientTotal,
	}
}

func expectCreate(mock sqlmock.Sqlmock, seq int64) {
	mock.ExpectQuery(lockRoomSQL).WithArgs("room-001").WillReturnRows(roomRow(true))
	mock.ExpectQuery(conflictSQL).
		WithArgs("room-001", "cancelled", "2025-06-12", "2025-06-10").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	expectSequence(mock, seq, seq)
}

// expectSequence expects the counter row to hold last while the highest
// stored id of the year has sequence stored.
func expectSequence(mock sqlmock.Sqlmock, last, stored int64) {
	mock.ExpectExec(seqInitSQL).WithArgs(2025).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(seqLockSQL).WithArgs(2025).
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(last))
	mock.ExpectQuery(maxSeqSQL).WithArgs(8, "RSV2025%").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(stored))
	mock.ExpectExec(seqBumpSQL).WithArgs(max(last, stored)+1, 2025).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestCreate_OK(t *testing.T) {
	svc, mock, rec := newTestService(t)

	mock.ExpectBegin()
	expectCreate(mock, 41)
	mock.ExpectExec(insertSQL).
		WithArgs("RSV20250042", "Maria Silva", "maria@example.com", "21999990000", "room-001", "Suíte Premium",
			"2025-06-10", "2025-06-12", 2, nil, 1100.0, "pending", "pending", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(historySQL).
		WithArgs("RSV20250042", "created", nil, "pending", nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	require.Equal(t, "RSV20250042", res.ID)
	require.Equal(t, 1100.0, res.TotalPrice)
	require.Equal(t, 2, res.Guests)
	require.Equal(t, model.StatusPending, res.Status)
	require.Equal(t, "Suíte Premium", res.RoomName)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, rec.created, 1)
	require.Len(t, rec.events, 1)
	require.Equal(t, queue.EventReservationCreated, rec.events[0].Type)
	require.Equal(t, 1, rec.flushes)
}

// The overlap check runs under the room row lock. Two racing creates are
// exercised against MySQL in reservation_integration_test.go.
func TestCreate_Conflict(t *testing.T) {
	svc, mock, rec := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WithArgs("room-001").WillReturnRows(roomRow(true))
	mock.ExpectQuery(conflictSQL).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), createInput())
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, rec.created)
	require.Empty(t, rec.events)
}

func TestCreate_RoomRejected(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		adults  int
		wantErr error
	}{
		{name: "unknown room", rows: sqlmock.NewRows(roomCols), adults: 1, wantErr: repository.ErrRoomNotFound},
		{name: "inactive room", rows: roomRow(false), adults: 1, wantErr: repository.ErrRoomNotFound},
		{name: "too many guests", rows: roomRow(true), adults: 3, wantErr: ErrTooManyGuests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, _ := newTestService(t)
			mock.ExpectBegin()
			mock.ExpectQuery(lockRoomSQL).WillReturnRows(tt.rows)
			mock.ExpectRollback()

			in := createInput()
			in.Adults = tt.adults
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_InvalidDates(t *testing.T) {
	svc, mock, _ := newTestService(t)
	in := createInput()
	in.CheckOut = in.CheckIn

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidDates)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RetriesOnDuplicateID(t *testing.T) {
	svc, mock, rec := newTestService(t)

	mock.ExpectBegin()
	expectCreate(mock, 41)
	mock.ExpectExec(insertSQL).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	expectCreate(mock, 42)
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(historySQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	require.Equal(t, "RSV20250043", res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, rec.created, 1)
}

func TestCreate_SequenceErrorIsReturned(t *testing.T) {
	svc, mock, rec := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WillReturnRows(roomRow(true))
	mock.ExpectQuery(conflictSQL).WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(seqInitSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(seqLockSQL).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), createInput())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, rec.created)
}

func TestCreate_DeletedNewestIDIsNotReused(t *testing.T) {
	svc, mock, _ := newTestService(t)

	// RSV20250005 was handed out and then deleted: the counter remembers 5
	// while the highest stored id is RSV20250004.
	mock.ExpectBegin()
	mock.ExpectQuery(lockRoomSQL).WithArgs("room-001").WillReturnRows(roomRow(true))
	mock.ExpectQuery(conflictSQL).WillReturnRows(sqlmock.NewRows([]string{"1"}))
	expectSequence(mock, 5, 4)
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(historySQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	require.Equal(t, "RSV20250006", res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ClampsAndReadsStats(t *testing.T) {
	svc, mock, _ := newTestService(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`FROM reservations WHERE status = \? AND \(guest_name LIKE \? OR id LIKE \? OR room_name LIKE \?\) ORDER BY created_at DESC LIMIT 200 OFFSET 0`).
		WithArgs("pending", "%Maria%", "%Maria%", "%Maria%").
		WillReturnRows(reservationRow("RSV20250001", "pending"))
	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "confirmed", "pending", "cancelled", "revenue"}).
			AddRow(int64(3), int64(1), int64(1), int64(1), 1100.0))

	out, err := svc.List(context.Background(), repository.ReservationFilter{
		Status: "pending", Search: "Maria", Limit: 1000, Offset: -5,
	})
	require.NoError(t, err)
	require.Len(t, out.Reservations, 1)
	require.Equal(t, "RSV20250001", out.Reservations[0].ID)
	require.Equal(t, model.ReservationStats{Total: 3, Confirmed: 1, Pending: 1, Cancelled: 1, TotalRevenue: 1100}, out.Stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	t.Run("invalid status", func(t *testing.T) {
		svc, mock, _ := newTestService(t)
		_, err := svc.UpdateStatus(context.Background(), "RSV20250001", "completed", nil)
		require.ErrorIs(t, err, ErrInvalidStatus)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		svc, mock, rec := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20259999").WillReturnRows(sqlmock.NewRows(reservationCols))

		_, err := svc.UpdateStatus(context.Background(), "RSV20259999", "confirmed", nil)
		require.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
		require.Empty(t, rec.changed)
	})

	t.Run("ok", func(t *testing.T) {
		svc, mock, rec := newTestService(t)
		uid := uint64(1)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "pending"))
		mock.ExpectBegin()
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "pending"))
		mock.ExpectExec(updateStatusSQL).WithArgs("confirmed", "RSV20250001").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(historySQL).
			WithArgs("RSV20250001", "status_changed", "pending", "confirmed", int64(1), nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		res, err := svc.UpdateStatus(context.Background(), "RSV20250001", "confirmed", &uid)
		require.NoError(t, err)
		require.Equal(t, model.StatusConfirmed, res.Status)
		require.NoError(t, mock.ExpectationsWereMet())

		require.Len(t, rec.changed, 1)
		require.Len(t, rec.events, 1)
		require.Equal(t, queue.EventReservationStatusChanged, rec.events[0].Type)
		require.Equal(t, "pending", rec.events[0].OldStatus)
		require.Equal(t, "confirmed", rec.events[0].Status)
	})

	t.Run("reactivating a rebooked cancellation conflicts", func(t *testing.T) {
		svc, mock, rec := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectBegin()
		mock.ExpectQuery(lockRoomSQL).WithArgs("room-001").WillReturnRows(roomRow(true))
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectQuery(`AND id <> \? LIMIT 1`).
			WithArgs("room-001", "cancelled", "2025-06-12", "2025-06-10", "RSV20250001").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectRollback()

		_, err := svc.UpdateStatus(context.Background(), "RSV20250001", "confirmed", nil)
		require.ErrorIs(t, err, repository.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
		require.Empty(t, rec.changed)
		require.Empty(t, rec.events)
	})

	t.Run("reactivating a free cancellation", func(t *testing.T) {
		svc, mock, rec := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectBegin()
		mock.ExpectQuery(lockRoomSQL).WithArgs("room-001").WillReturnRows(roomRow(true))
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectQuery(`AND id <> \? LIMIT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}))
		mock.ExpectExec(updateStatusSQL).WithArgs("pending", "RSV20250001").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(historySQL).
			WithArgs("RSV20250001", "status_changed", "cancelled", "pending", nil, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		res, err := svc.UpdateStatus(context.Background(), "RSV20250001", "pending", nil)
		require.NoError(t, err)
		require.Equal(t, model.StatusPending, res.Status)
		require.NoError(t, mock.ExpectationsWereMet())
		require.Len(t, rec.changed, 1)
	})

	t.Run("cancelling skips the availability check", func(t *testing.T) {
		svc, mock, _ := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectBegin()
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectExec(updateStatusSQL).WithArgs("cancelled", "RSV20250001").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(historySQL).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		_, err := svc.UpdateStatus(context.Background(), "RSV20250001", "cancelled", nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate(t *testing.T) {
	in := UpdateInput{
		GuestName:    "Maria S.",
		ContactEmail: "maria@example.com",
		ContactPhone: "21999990000",
		CheckIn:      day(2025, 6, 11),
		CheckOut:     day(2025, 6, 14),
		Adults:       2,
		TotalPrice:   1500,
	}

	t.Run("conflict", func(t *testing.T) {
		svc, mock, _ := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "pending"))
		mock.ExpectBegin()
		mock.ExpectQuery(lockRoomSQL).WithArgs("room-001").WillReturnRows(roomRow(true))
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "pending"))
		mock.ExpectQuery(`AND id <> \? LIMIT 1`).
			WithArgs("room-001", "cancelled", "2025-06-14", "2025-06-11", "RSV20250001").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectRollback()

		_, err := svc.Update(context.Background(), "RSV20250001", in, nil)
		require.ErrorIs(t, err, repository.ErrConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ok keeps staff price", func(t *testing.T) {
		svc, mock, rec := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "pending"))
		mock.ExpectBegin()
		mock.ExpectQuery(lockRoomSQL).WillReturnRows(roomRow(true))
		mock.ExpectQuery(lockReservation).WillReturnRows(reservationRow("RSV20250001", "pending"))
		mock.ExpectQuery(`AND id <> \? LIMIT 1`).WillReturnRows(sqlmock.NewRows([]string{"1"}))
		mock.ExpectExec(`UPDATE reservations SET guest_name = \?`).
			WithArgs("Maria S.", "maria@example.com", "21999990000", "Suíte Premium",
				"2025-06-11", "2025-06-14", 2, nil, 1500.0, nil, "RSV20250001").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(historySQL).
			WithArgs("RSV20250001", "updated", "pending", "pending", nil, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(getReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "pending"))

		_, err := svc.Update(context.Background(), "RSV20250001", in, nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		require.Equal(t, 1, rec.flushes)
	})

	t.Run("not found", func(t *testing.T) {
		svc, mock, _ := newTestService(t)
		mock.ExpectQuery(getReservation).WithArgs("RSV20250404").WillReturnRows(sqlmock.NewRows(reservationCols))

		_, err := svc.Update(context.Background(), "RSV20250404", in, nil)
		require.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc, mock, _ := newTestService(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(reservationRow("RSV20250001", "cancelled"))
		mock.ExpectExec(deleteSQL).WithArgs("RSV20250001").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(historySQL).
			WithArgs("RSV20250001", "deleted", "cancelled", nil, nil, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, svc.Delete(context.Background(), "RSV20250001", nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat is not found", func(t *testing.T) {
		svc, mock, _ := newTestService(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockReservation).WithArgs("RSV20250001").WillReturnRows(sqlmock.NewRows(reservationCols))
		mock.ExpectRollback()

		err := svc.Delete(context.Background(), "RSV20250001", nil)
		require.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompletePastStays(t *testing.T) {
	svc, mock, rec := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(finishedStaysSQL).WithArgs("2025-06-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("RSV20250003").AddRow("RSV20250007"))
	for _, id := range []string{"RSV20250003", "RSV20250007"} {
		mock.ExpectExec(updateStatusSQL).WithArgs("completed", id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(historySQL).
			WithArgs(id, "completed", "confirmed", "completed", nil, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	n, err := svc.CompletePastStays(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, rec.flushes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatReservationID(t *testing.T) {
	require.Equal(t, "RSV20250001", FormatReservationID(2025, 1))
	require.Equal(t, "RSV20259999", FormatReservationID(2025, 9999))
	require.Equal(t, "RSV202610000", FormatReservationID(2026, 10000))
	require.Equal(t, "RSV2025", YearPrefix(2025))
}

func TestStayPrice(t *testing.T) {
	require.Equal(t, 1100.0, StayPrice(550, day(2025, 6, 10), day(2025, 6, 12)))
	require.Equal(t, 1050.0, StayPrice(350, day(2025, 12, 30), day(2026, 1, 2)))
}
