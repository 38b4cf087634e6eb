// Package queue defines reservation events exchanged over RabbitMQ, the
// publisher used by the API and the consumer that logs them.
package queue

import (
	"time"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

// Event types carried in ReservationEvent.Type and in the AMQP Type header.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
)

// ReservationEvent is published after a reservation is created or its status
// changes. It carries enough data for consumers to log or notify without
// querying the database.
type ReservationEvent struct {
	Type          string  `json:"type"`
	ReservationID string  `json:"reservation_id"`
	GuestName     string  `json:"guest_name"`
	ContactEmail  string  `json:"contact_email"`
	RoomID        string  `json:"room_id"`
	RoomName      string  `json:"room_name"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	Guests        int     `json:"guests"`
	TotalPrice    float64 `json:"total_price"`
	OldStatus     string  `json:"old_status,omitempty"`
	Status        string  `json:"status"`
	OccurredAt    string  `json:"occurred_at"`
}

// NewReservationEvent builds an event of the given type from a reservation.
func NewReservationEvent(typ string, r model.Reservation, oldStatus string, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		GuestName:     r.GuestName,
		ContactEmail:  r.ContactEmail,
		RoomID:        r.RoomID,
		RoomName:      r.RoomName,
		CheckIn:       r.CheckIn.Format(time.DateOnly),
		CheckOut:      r.CheckOut.Format(time.DateOnly),
		Guests:        r.Guests,
		TotalPrice:    r.TotalPrice,
		OldStatus:     oldStatus,
		Status:        r.Status,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
