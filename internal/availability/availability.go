// Package availability answers whether a court is free for a candidate slot.
package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/timeslot"
)

type Checker struct {
	q *db.Queries
}

func NewChecker(q *db.Queries) (*Checker, error) {
	if q == nil {
		return nil, errors.New("availability checker requires queries")
	}
	return &Checker{q: q}, nil
}

// CourtIsFree reports whether no tentative or confirmed booking on the given
// date and court overlaps [slotStart, slotEnd).
func (c *Checker) CourtIsFree(ctx context.Context, date string, courtID int64, slotStart, slotEnd timeslot.Clock) (bool, error) {
	return c.CourtIsFreeExcluding(ctx, date, courtID, slotStart, slotEnd, 0)
}

// CourtIsFreeExcluding is CourtIsFree ignoring one booking id, so a booking
// being edited in place does not conflict with itself.
func (c *Checker) CourtIsFreeExcluding(ctx context.Context, date string, courtID int64, slotStart, slotEnd timeslot.Clock, excludeBookingID int64) (bool, error) {
	conflicts, err := c.q.CountLiveBookingOverlaps(ctx, db.CountLiveBookingOverlapsParams{
		Date:       date,
		CourtID:    courtID,
		StartClock: slotStart.String(),
		EndClock:   slotEnd.String(),
		ExcludeID:  excludeBookingID,
	})
	if err != nil {
		return false, fmt.Errorf("count booking overlaps for court %d on %s: %w", courtID, date, err)
	}
	return conflicts == 0, nil
}
