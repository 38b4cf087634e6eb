// Package service implements the reservation workflows on top of the
// repositories: transactions, id assignment, history, notifications and
// events. Errors returned here wrap either the sentinels below or the
// repository sentinels, so callers match them with errors.Is.
package service

import "github.com/pkg/errors"

var (
	// ErrInvalidDates means check-out is not after check-in.
	ErrInvalidDates = errors.New("check-out must be after check-in")
	// ErrInvalidStatus means a status outside pending, confirmed and cancelled.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrTooManyGuests means adults plus children exceed the room capacity.
	ErrTooManyGuests = errors.New("guests exceed room capacity")
	// ErrInvalidCredentials is returned by Login for unknown users, inactive
	// users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
