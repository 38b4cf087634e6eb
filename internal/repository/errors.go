// Package repository holds the MySQL data access layer. The sentinel errors
// below let services and handlers tell failure scenarios apart without
// inspecting driver errors. For example, ErrConflict signals that a room is
// already booked for overlapping dates, while ErrNotFound means the addressed
// row does not exist.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a reservation, message or setting with the
// requested key does not exist. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrRoomNotFound is returned when a booking references an unknown or
// inactive room.
var ErrRoomNotFound = errors.New("room not found")

// ErrConflict is returned when the requested dates overlap an existing,
// non-cancelled reservation of the same room. Handlers translate it into
// HTTP 409.
var ErrConflict = errors.New("room not available for the selected dates")

// ErrDuplicateID is returned when an insert collides with an existing
// reservation id. The caller retries with a fresh sequence.
var ErrDuplicateID = errors.New("duplicate reservation id")

// ErrEmailExists is returned when a user with the same email exists.
var ErrEmailExists = errors.New("email already exists")

const errDupEntry = 1062

// IsDuplicateKey reports whether err is a MySQL duplicate-entry error.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}
