package service

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/queue"
	"github.com/iliyamo/pousada-reservation/internal/repository"
)

// List bounds applied when the caller leaves them out or asks for too much.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

const publishTimeout = 3 * time.Second

// Notifier delivers guest and staff emails. Implementations must not block
// the caller for the duration of an SMTP exchange.
type Notifier interface {
	ReservationCreated(r model.Reservation)
	StatusChanged(r model.Reservation)
	MessageReceived(m model.ContactMessage)
}

// EventPublisher forwards reservation events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Invalidator drops cached responses that depend on reservation data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ReservationOptions carries the optional collaborators of ReservationService.
// Nil collaborators are replaced by no-ops.
type ReservationOptions struct {
	IDRetries int
	Now       func() time.Time
	Logger    *zap.Logger
	Notifier  Notifier
	Events    EventPublisher
	Cache     Invalidator
}

// ReservationService runs the reservation workflows. Every write happens in
// one transaction that starts by locking the room row, so two bookings of
// the same room are checked and inserted one after the other.
type ReservationService struct {
	rooms        *repository.RoomRepo
	reservations *repository.ReservationRepo
	idRetries    int
	now          func() time.Time
	log          *zap.Logger
	notifier     Notifier
	events       EventPublisher
	cache        Invalidator
}

// NewReservationService wires the service. Both repositories must be non-nil.
func NewReservationService(rooms *repository.RoomRepo, reservations *repository.ReservationRepo, opts ReservationOptions) *ReservationService {
	if rooms == nil || reservations == nil {
		panic("nil repository passed to NewReservationService")
	}
	s := &ReservationService{
		rooms:        rooms,
		reservations: reservations,
		idRetries:    opts.IDRetries,
		now:          opts.Now,
		log:          opts.Logger,
		notifier:     opts.Notifier,
		events:       opts.Events,
		cache:        opts.Cache,
	}
	if s.idRetries < 1 {
		s.idRetries = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	return s
}

// CreateInput is a guest booking request after field validation.
type CreateInput struct {
	GuestName       string
	ContactEmail    string
	ContactPhone    string
	RoomID          string
	RoomName        string
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	SpecialRequests *string
	// ClientTotal is the price the client computed. It is only compared
	// against the server price for logging.
	ClientTotal *float64
}

// Create books a room. The id is RSV<year><seq> with seq taken from the
// per-year counter; a primary key collision restarts the whole transaction
// up to the configured number of attempts.
func (s *ReservationService) Create(ctx context.Context, in CreateInput) (model.Reservation, error) {
	in.CheckIn = dateOnly(in.CheckIn)
	in.CheckOut = dateOnly(in.CheckOut)
	if !in.CheckOut.After(in.CheckIn) {
		return model.Reservation{}, ErrInvalidDates
	}

	var (
		res model.Reservation
		err error
	)
	for attempt := 1; attempt <= s.idRetries; attempt++ {
		res, err = s.createOnce(ctx, in)
		if !errors.Is(err, repository.ErrDuplicateID) {
			break
		}
		s.log.Warn("reservation id collision", zap.Int("attempt", attempt), zap.String("id", res.ID))
	}
	if err != nil {
		return model.Reservation{}, err
	}

	if in.ClientTotal != nil && math.Abs(*in.ClientTotal-res.TotalPrice) >= 0.01 {
		s.log.Info("client total ignored",
			zap.String("reservation_id", res.ID),
			zap.Float64("client_total", *in.ClientTotal),
			zap.Float64("total", res.TotalPrice))
	}
	s.log.Info("reservation created", zap.String("reservation_id", res.ID), zap.String("room_id", res.RoomID))

	s.notifier.ReservationCreated(res)
	s.publish(queue.EventReservationCreated, res, "")
	s.invalidate(ctx)
	return res, nil
}

func (s *ReservationService) createOnce(ctx context.Context, in CreateInput) (model.Reservation, error) {
	var res model.Reservation
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		room, err := s.rooms.LockTx(ctx, tx, in.RoomID)
		if err != nil {
			return errors.Wrap(err, "lock room")
		}
		if !room.Active {
			return errors.Wrap(repository.ErrRoomNotFound, in.RoomID)
		}
		guests := in.Adults + in.Children
		if guests > room.MaxGuests {
			return errors.Wrapf(ErrTooManyGuests, "%d guests, room takes %d", guests, room.MaxGuests)
		}

		stay := repository.DateRange{CheckIn: in.CheckIn, CheckOut: in.CheckOut}
		busy, err := s.reservations.HasConflictTx(ctx, tx, room.ID, stay, "")
		if err != nil {
			return errors.Wrap(err, "check availability")
		}
		if busy {
			return repository.ErrConflict
		}

		year := s.now().UTC().Year()
		seq, err := s.reservations.NextSequenceTx(ctx, tx, year, YearPrefix(year))
		if err != nil {
			return errors.Wrap(err, "next reservation sequence")
		}

		roomName := in.RoomName
		if roomName == "" {
			roomName = room.Name
		}
		res = model.Reservation{
			ID:              FormatReservationID(year, seq),
			GuestName:       in.GuestName,
			ContactEmail:    in.ContactEmail,
			ContactPhone:    in.ContactPhone,
			RoomID:          room.ID,
			RoomName:        roomName,
			CheckIn:         in.CheckIn,
			CheckOut:        in.CheckOut,
			Guests:          guests,
			SpecialRequests: in.SpecialRequests,
			TotalPrice:      StayPrice(room.Price, in.CheckIn, in.CheckOut),
			Status:          model.StatusPending,
			PaymentStatus:   model.PaymentPending,
		}
		if err := s.reservations.InsertTx(ctx, tx, res); err != nil {
			return err
		}
		return s.reservations.AddHistory(ctx, tx, model.ReservationHistory{
			ReservationID: res.ID,
			Action:        model.ActionCreated,
			NewStatus:     strPtr(model.StatusPending),
		})
	})
	return res, err
}

// StayPrice is the nightly price times the number of nights, rounded to
// cents.
func StayPrice(nightly float64, checkIn, checkOut time.Time) float64 {
	return math.Round(nightly*float64(model.Nights(checkIn, checkOut))*100) / 100
}

// ListResult is one page of reservations plus dashboard totals.
type ListResult struct {
	Reservations []model.Reservation    `json:"reservations"`
	Stats        model.ReservationStats `json:"stats"`
}

// List returns a filtered page of reservations. The page and the totals are
// read concurrently.
func (s *ReservationService) List(ctx context.Context, f repository.ReservationFilter) (ListResult, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var out ListResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.reservations.List(gctx, f)
		if err != nil {
			return errors.Wrap(err, "list reservations")
		}
		out.Reservations = list
		return nil
	})
	g.Go(func() error {
		stats, err := s.reservations.Stats(gctx)
		if err != nil {
			return errors.Wrap(err, "reservation stats")
		}
		out.Stats = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}
	return out, nil
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, id string) (model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, id)
	}
	return res, nil
}

// UpdateInput is a staff edit of a reservation. All fields replace the
// stored ones; the room and the status are not editable here.
type UpdateInput struct {
	GuestName       string
	ContactEmail    string
	ContactPhone    string
	RoomName        string
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	SpecialRequests *string
	TotalPrice      float64
	Notes           *string
}

// Update replaces the editable fields of a reservation. New dates are
// checked against the other reservations of the same room.
func (s *ReservationService) Update(ctx context.Context, id string, in UpdateInput, userID *uint64) (model.Reservation, error) {
	in.CheckIn = dateOnly(in.CheckIn)
	in.CheckOut = dateOnly(in.CheckOut)
	if !in.CheckOut.After(in.CheckIn) {
		return model.Reservation{}, ErrInvalidDates
	}

	cur, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, id)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		// room first, then the reservation: the same order Create uses
		if err := s.lockRoom(ctx, tx, cur.RoomID); err != nil {
			return err
		}
		locked, err := s.reservations.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return errors.Wrap(err, id)
		}
		stay := repository.DateRange{CheckIn: in.CheckIn, CheckOut: in.CheckOut}
		busy, err := s.reservations.HasConflictTx(ctx, tx, locked.RoomID, stay, id)
		if err != nil {
			return errors.Wrap(err, "check availability")
		}
		if busy && locked.Status != model.StatusCancelled {
			return repository.ErrConflict
		}

		roomName := in.RoomName
		if roomName == "" {
			roomName = locked.RoomName
		}
		next := locked
		next.GuestName = in.GuestName
		next.ContactEmail = in.ContactEmail
		next.ContactPhone = in.ContactPhone
		next.RoomName = roomName
		next.CheckIn = in.CheckIn
		next.CheckOut = in.CheckOut
		next.Guests = in.Adults + in.Children
		next.SpecialRequests = in.SpecialRequests
		next.TotalPrice = in.TotalPrice
		next.Notes = in.Notes
		if err := s.reservations.UpdateTx(ctx, tx, next); err != nil {
			return errors.Wrap(err, id)
		}
		return s.reservations.AddHistory(ctx, tx, model.ReservationHistory{
			ReservationID: id,
			Action:        model.ActionUpdated,
			OldStatus:     strPtr(locked.Status),
			NewStatus:     strPtr(locked.Status),
			UserID:        userID,
		})
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.invalidate(ctx)

	updated, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, "reload reservation")
	}
	return updated, nil
}

// UpdateStatus moves a reservation to pending, confirmed or cancelled and
// notifies the guest. Reactivating a cancelled reservation re-checks its
// dates, since the room may have been booked again in the meantime.
func (s *ReservationService) UpdateStatus(ctx context.Context, id, status string, userID *uint64) (model.Reservation, error) {
	if !model.PatchableStatuses[status] {
		return model.Reservation{}, errors.Wrap(ErrInvalidStatus, status)
	}
	reactivates := func(from string) bool {
		return from == model.StatusCancelled && status != model.StatusCancelled
	}

	prev, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, id)
	}

	var res model.Reservation
	var old string
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		roomLocked := false
		if reactivates(prev.Status) {
			if err := s.lockRoom(ctx, tx, prev.RoomID); err != nil {
				return err
			}
			roomLocked = true
		}
		cur, err := s.reservations.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return errors.Wrap(err, id)
		}
		if reactivates(cur.Status) {
			// cancelled between the read above and the row lock
			if !roomLocked {
				if err := s.lockRoom(ctx, tx, cur.RoomID); err != nil {
					return err
				}
			}
			stay := repository.DateRange{CheckIn: cur.CheckIn, CheckOut: cur.CheckOut}
			busy, err := s.reservations.HasConflictTx(ctx, tx, cur.RoomID, stay, id)
			if err != nil {
				return errors.Wrap(err, "check availability")
			}
			if busy {
				return repository.ErrConflict
			}
		}
		if err := s.reservations.UpdateStatusTx(ctx, tx, id, status); err != nil {
			return errors.Wrap(err, id)
		}
		if err := s.reservations.AddHistory(ctx, tx, model.ReservationHistory{
			ReservationID: id,
			Action:        model.ActionStatusChanged,
			OldStatus:     strPtr(cur.Status),
			NewStatus:     strPtr(status),
			UserID:        userID,
		}); err != nil {
			return err
		}
		old = cur.Status
		res = cur
		res.Status = status
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.Info("reservation status changed",
		zap.String("reservation_id", id), zap.String("from", old), zap.String("to", status))

	s.notifier.StatusChanged(res)
	s.publish(queue.EventReservationStatusChanged, res, old)
	s.invalidate(ctx)
	return res, nil
}

// Delete removes a reservation. The history entry survives the row.
func (s *ReservationService) Delete(ctx context.Context, id string, userID *uint64) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.reservations.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return errors.Wrap(err, id)
		}
		if err := s.reservations.DeleteTx(ctx, tx, id); err != nil {
			return errors.Wrap(err, id)
		}
		return s.reservations.AddHistory(ctx, tx, model.ReservationHistory{
			ReservationID: id,
			Action:        model.ActionDeleted,
			OldStatus:     strPtr(cur.Status),
			UserID:        userID,
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("reservation deleted", zap.String("reservation_id", id))
	s.invalidate(ctx)
	return nil
}

// History lists the audit trail of a reservation, including deleted ones.
func (s *ReservationService) History(ctx context.Context, id string) ([]model.ReservationHistory, error) {
	h, err := s.reservations.History(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "reservation history")
	}
	return h, nil
}

// UpcomingArrivals lists confirmed check-ins of the next seven days.
func (s *ReservationService) UpcomingArrivals(ctx context.Context) ([]model.Arrival, error) {
	a, err := s.reservations.UpcomingArrivals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "upcoming arrivals")
	}
	return a, nil
}

// CompletePastStays marks confirmed reservations whose check-out date has
// passed as completed and returns how many were changed.
func (s *ReservationService) CompletePastStays(ctx context.Context) (int, error) {
	today := dateOnly(s.now().UTC())
	var ids []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		ids, err = s.reservations.FinishedStaysTx(ctx, tx, today)
		if err != nil {
			return errors.Wrap(err, "finished stays")
		}
		for _, id := range ids {
			if err := s.reservations.UpdateStatusTx(ctx, tx, id, model.StatusCompleted); err != nil {
				return errors.Wrap(err, id)
			}
			if err := s.reservations.AddHistory(ctx, tx, model.ReservationHistory{
				ReservationID: id,
				Action:        model.ActionCompleted,
				OldStatus:     strPtr(model.StatusConfirmed),
				NewStatus:     strPtr(model.StatusCompleted),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		s.invalidate(ctx)
	}
	return len(ids), nil
}

// lockRoom takes the room row lock that serializes writes to one room's
// calendar. A room removed from the catalog has no row to lock.
func (s *ReservationService) lockRoom(ctx context.Context, tx *sql.Tx, roomID string) error {
	if _, err := s.rooms.LockTx(ctx, tx, roomID); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		return errors.Wrap(err, "lock room")
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back unless fn and the commit
// both succeed.
func (s *ReservationService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	committed = true
	return nil
}

func (s *ReservationService) publish(typ string, r model.Reservation, oldStatus string) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	ev := queue.NewReservationEvent(typ, r, oldStatus, s.now())
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish reservation event", zap.String("type", typ), zap.String("reservation_id", r.ID), zap.Error(err))
	}
}

func (s *ReservationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("invalidate room cache", zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) ReservationCreated(model.Reservation) {}
func (nopNotifier) StatusChanged(model.Reservation) {}
func (nopNotifier) MessageReceived(model.ContactMessage) {}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }
