package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Room is a bookable unit of the inn.
type Room struct {
	ID          string     `json:"id"`          // rooms.id
	Name        string     `json:"name"`        // rooms.name
	Description *string    `json:"description"` // rooms.description (nullable)
	Price       float64    `json:"price"`       // rooms.price, per night
	MaxGuests   int        `json:"max_guests"`  // rooms.max_guests
	Amenities   StringList `json:"amenities"`   // rooms.amenities (JSON)
	Images      StringList `json:"images"`      // rooms.images (JSON)
	Active      bool       `json:"active"`      // rooms.active
	CreatedAt   time.Time  `json:"created_at"`  // rooms.created_at
	UpdatedAt   time.Time  `json:"updated_at"`  // rooms.updated_at
}

// StringList maps a JSON array column to a Go slice.
type StringList []string

// Scan implements sql.Scanner. NULL becomes an empty list.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
