package service

import (
	"fmt"
	"strconv"
)

const reservationIDPrefix = "RSV"

// YearPrefix returns the id prefix shared by every reservation of year.
func YearPrefix(year int) string {
	return reservationIDPrefix + strconv.Itoa(year)
}

// FormatReservationID renders RSV<year><seq>, padding seq to four digits.
// Sequences above 9999 simply grow to five digits.
func FormatReservationID(year, seq int) string {
	return fmt.Sprintf("%s%04d", YearPrefix(year), seq)
}
