package repository

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// DateRange is a requested stay. CheckOut is the departure day.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Overlap builds the date-overlap predicate used both to filter rooms and
// to reject conflicting bookings, so the two can never disagree.
//
// The default is half-open: a stay ending on day D does not clash with one
// starting on D. Inclusive restores BETWEEN semantics, where it does.
type Overlap struct {
	Inclusive bool
}

// Cond returns the WHERE fragment matching reservations that overlap r.
func (o Overlap) Cond(r DateRange) sq.Sqlizer {
	in := r.CheckIn.Format(time.DateOnly)
	out := r.CheckOut.Format(time.DateOnly)
	if o.Inclusive {
		return sq.Or{
			sq.Expr("check_in BETWEEN ? AND ?", in, out),
			sq.Expr("check_out BETWEEN ? AND ?", in, out),
			sq.And{sq.LtOrEq{"check_in": in}, sq.GtOrEq{"check_out": out}},
		}
	}
	return sq.And{sq.Lt{"check_in": out}, sq.Gt{"check_out": in}}
}

// blocking excludes cancelled reservations from availability checks.
var blocking = sq.NotEq{"status": "cancelled"}
