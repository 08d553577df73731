// Package hours resolves per-weekday club opening rules and clamps play
// windows to them. Every interval headed for the store passes through Clamp
// first, so no booking can fall outside configured hours.
package hours

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/timeslot"
)

var (
	ErrBadDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrClosed       = errors.New("club is closed on this day")
	ErrOutsideHours = errors.New("window is outside club hours")
)

// Fallback schedule when a weekday rule is missing: Mon-Sat 10:00-22:00,
// Sunday closed. Matches the seeded defaults.
const (
	defaultOpenClock  = "10:00"
	defaultCloseClock = "22:00"
)

type Resolver struct {
	q *db.Queries
}

func NewResolver(q *db.Queries) (*Resolver, error) {
	if q == nil {
		return nil, errors.New("hours resolver requires queries")
	}
	return &Resolver{q: q}, nil
}

// Weekday maps a "YYYY-MM-DD" date onto the club's weekday numbering,
// 0=Monday .. 6=Sunday.
func Weekday(date string) (int64, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadDate, date)
	}
	// time.Weekday counts from Sunday.
	return int64((int(parsed.Weekday()) + 6) % 7), nil
}

// ForDate returns the open and close clocks for the given date, with isOpen
// false when the club does not open that weekday. A missing rule falls back to
// the default schedule.
func (r *Resolver) ForDate(ctx context.Context, date string) (open, close timeslot.Clock, isOpen bool, err error) {
	weekday, err := Weekday(date)
	if err != nil {
		return 0, 0, false, err
	}

	rule, err := r.q.GetClubHours(ctx, weekday)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, 0, false, fmt.Errorf("load club hours for weekday %d: %w", weekday, err)
		}
		if weekday == 6 {
			return 0, 0, false, nil
		}
		rule = db.ClubHour{
			Weekday:    weekday,
			IsOpen:     true,
			OpenClock:  defaultOpenClock,
			CloseClock: defaultCloseClock,
		}
	}

	if !rule.IsOpen {
		return 0, 0, false, nil
	}

	open, err = timeslot.ParseClock(rule.OpenClock)
	if err != nil {
		return 0, 0, false, fmt.Errorf("stored open clock for weekday %d: %w", weekday, err)
	}
	close, err = timeslot.ParseClock(rule.CloseClock)
	if err != nil {
		return 0, 0, false, fmt.Errorf("stored close clock for weekday %d: %w", weekday, err)
	}
	return open, close, true, nil
}

// Clamp restricts [start, end) to the club's hours for the date. It returns
// ErrClosed when the club does not open that day and ErrOutsideHours when
// clamping empties the window.
func (r *Resolver) Clamp(ctx context.Context, date string, start, end timeslot.Clock) (timeslot.Clock, timeslot.Clock, error) {
	open, close, isOpen, err := r.ForDate(ctx, date)
	if err != nil {
		return 0, 0, err
	}
	if !isOpen {
		return 0, 0, ErrClosed
	}

	clampedStart := start
	if open > clampedStart {
		clampedStart = open
	}
	clampedEnd := end
	if close < clampedEnd {
		clampedEnd = close
	}
	if clampedStart >= clampedEnd {
		return 0, 0, ErrOutsideHours
	}
	return clampedStart, clampedEnd, nil
}
