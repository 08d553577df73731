// internal/db/bookings.go
package db

import (
	"context"
	"database/sql"
)

const bookingColumns = `id, date, court_id, start_clock, end_clock, status, player_a, player_b, notes, created_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.Date,
		&b.CourtID,
		&b.StartClock,
		&b.EndClock,
		&b.Status,
		&b.PlayerA,
		&b.PlayerB,
		&b.Notes,
		&b.CreatedAt,
	)
	return b, err
}

type CreateBookingParams struct {
	Date       string
	CourtID    int64
	StartClock string
	EndClock   string
	Status     string
	PlayerA    sql.NullString
	PlayerB    sql.NullString
	Notes      sql.NullString
}

func (q *Queries) CreateBooking(ctx context.Context, arg CreateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO bookings (date, court_id, start_clock, end_clock, status, player_a, player_b, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+bookingColumns,
		arg.Date,
		arg.CourtID,
		arg.StartClock,
		arg.EndClock,
		arg.Status,
		arg.PlayerA,
		arg.PlayerB,
		arg.Notes,
	)
	return scanBooking(row)
}

func (q *Queries) GetBooking(ctx context.Context, id int64) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = ?`,
		id,
	)
	return scanBooking(row)
}

type CountLiveBookingOverlapsParams struct {
	Date       string
	CourtID    int64
	StartClock string
	EndClock   string
	// ExcludeID skips one booking, for edit-in-place checks. Zero excludes
	// nothing; booking ids start at 1.
	ExcludeID int64
}

// CountLiveBookingOverlaps counts tentative or confirmed bookings on the given
// date and court whose [start, end) interval overlaps the candidate slot. The
// overlap test runs on the SQL side: existing.start < slot.end AND
// existing.end > slot.start.
func (q *Queries) CountLiveBookingOverlaps(ctx context.Context, arg CountLiveBookingOverlapsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM bookings
		WHERE date = ?
		  AND court_id = ?
		  AND status IN ('tentative', 'confirmed')
		  AND start_clock < ?
		  AND end_clock > ?
		  AND id != ?`,
		arg.Date,
		arg.CourtID,
		arg.EndClock,
		arg.StartClock,
		arg.ExcludeID,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func (q *Queries) ListConfirmedBookingsForDate(ctx context.Context, date string) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE date = ? AND status = 'confirmed'
		ORDER BY court_id, start_clock`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

type UpdateBookingParams struct {
	ID         int64
	Date       string
	CourtID    int64
	StartClock string
	EndClock   string
	PlayerA    sql.NullString
	PlayerB    sql.NullString
	Notes      sql.NullString
}

func (q *Queries) UpdateBooking(ctx context.Context, arg UpdateBookingParams) (Booking, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE bookings
		SET date = ?, court_id = ?, start_clock = ?, end_clock = ?, player_a = ?, player_b = ?, notes = ?
		WHERE id = ?
		RETURNING `+bookingColumns,
		arg.Date,
		arg.CourtID,
		arg.StartClock,
		arg.EndClock,
		arg.PlayerA,
		arg.PlayerB,
		arg.Notes,
		arg.ID,
	)
	return scanBooking(row)
}

type UpdateBookingStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) UpdateBookingStatus(ctx context.Context, arg UpdateBookingStatusParams) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE bookings SET status = ? WHERE id = ?`,
		arg.Status,
		arg.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type UpdateBookingCourtParams struct {
	CourtID int64
	ID      int64
}

func (q *Queries) UpdateBookingCourt(ctx context.Context, arg UpdateBookingCourtParams) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE bookings SET court_id = ? WHERE id = ?`,
		arg.CourtID,
		arg.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q *Queries) DeleteBooking(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
