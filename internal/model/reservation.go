package model

import "time"

// Reservation statuses. New reservations start as pending; staff confirm or
// cancel them and the scheduler marks finished stays as completed.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Payment statuses stored alongside a reservation.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// PatchableStatuses are the values staff may set through the status endpoint.
var PatchableStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCancelled: true,
}

// Reservation records a guest's stay in one room.
//
// Fields:
//
//	ID              – RSV<year><seq>, assigned at creation and never changed.
//	GuestName       – name of the guest making the booking.
//	ContactEmail    – address that receives confirmation and status emails.
//	ContactPhone    – phone or WhatsApp number.
//	RoomID/RoomName – booked room; the name is denormalized.
//	CheckIn         – arrival date.
//	CheckOut        – departure date, always after CheckIn.
//	Guests          – adults plus children.
//	TotalPrice      – room price times nights, in BRL.
type Reservation struct {
	ID              string    `json:"id"`               // reservations.id
	GuestName       string    `json:"guest_name"`       // reservations.guest_name
	ContactEmail    string    `json:"contact_email"`    // reservations.contact_email
	ContactPhone    string    `json:"contact_phone"`    // reservations.contact_phone
	RoomID          string    `json:"room_id"`          // reservations.room_id
	RoomName        string    `json:"room_name"`        // reservations.room_name
	CheckIn         time.Time `json:"check_in"`         // reservations.check_in
	CheckOut        time.Time `json:"check_out"`        // reservations.check_out
	Guests          int       `json:"guests"`           // reservations.guests
	SpecialRequests *string   `json:"special_requests"` // reservations.special_requests (nullable)
	TotalPrice      float64   `json:"total_price"`      // reservations.total_price
	Status          string    `json:"status"`           // reservations.status
	PaymentStatus   string    `json:"payment_status"`   // reservations.payment_status
	Notes           *string   `json:"notes"`            // reservations.notes (nullable)
	CreatedAt       time.Time `json:"created_at"`       // reservations.created_at
	UpdatedAt       time.Time `json:"updated_at"`       // reservations.updated_at
}

// Nights returns the number of nights between check-in and check-out.
func (r Reservation) Nights() int {
	return Nights(r.CheckIn, r.CheckOut)
}

// Nights counts calendar days between two dates, ignoring the time of day.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

// ReservationStats aggregates reservation counts for the staff dashboard.
type ReservationStats struct {
	Total        int64   `json:"total"`
	Confirmed    int64   `json:"confirmed"`
	Pending      int64   `json:"pending"`
	Cancelled    int64   `json:"cancelled"`
	TotalRevenue float64 `json:"total_revenue"`
}

// Arrival is a row of the upcoming_arrivals view.
type Arrival struct {
	Reservation
	Nights           int `json:"nights"`             // upcoming_arrivals.nights
	DaysUntilArrival int `json:"days_until_arrival"` // upcoming_arrivals.days_until_arrival
}

// History actions recorded in reservation_history.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
	ActionCompleted     = "completed"
)

// ReservationHistory is an audit entry for a reservation change.
type ReservationHistory struct {
	ID            uint64    `json:"id"`             // reservation_history.id
	ReservationID string    `json:"reservation_id"` // reservation_history.reservation_id
	Action        string    `json:"action"`         // reservation_history.action
	OldStatus     *string   `json:"old_status"`     // reservation_history.old_status (nullable)
	NewStatus     *string   `json:"new_status"`     // reservation_history.new_status (nullable)
	UserID        *uint64   `json:"user_id"`        // reservation_history.user_id (nullable)
	Notes         *string   `json:"notes"`          // reservation_history.notes (nullable)
	CreatedAt     time.Time `json:"created_at"`     // reservation_history.created_at
}
