package model

import "time"

// Staff roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents a staff account as stored in the `users` table. Guests
// never log in; only admin and staff users exist.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique email address used to log in.
//	PasswordHash – bcrypt hashed password (column `password`).
//	Role         – admin or staff.
//	Active       – inactive users cannot log in.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password
	Role         string    // users.role
	Active       bool      // users.active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
