// internal/db/hours.go
package db

import "context"

const clubHourColumns = `weekday, is_open, open_clock, close_clock`

func (q *Queries) GetClubHours(ctx context.Context, weekday int64) (ClubHour, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+clubHourColumns+`
		FROM club_hours
		WHERE weekday = ?`,
		weekday,
	)
	var h ClubHour
	err := row.Scan(&h.Weekday, &h.IsOpen, &h.OpenClock, &h.CloseClock)
	return h, err
}

func (q *Queries) ListClubHours(ctx context.Context) ([]ClubHour, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+clubHourColumns+`
		FROM club_hours
		ORDER BY weekday`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []ClubHour
	for rows.Next() {
		var h ClubHour
		if err := rows.Scan(&h.Weekday, &h.IsOpen, &h.OpenClock, &h.CloseClock); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

type UpsertClubHoursParams struct {
	Weekday    int64
	IsOpen     bool
	OpenClock  string
	CloseClock string
}

func (q *Queries) UpsertClubHours(ctx context.Context, arg UpsertClubHoursParams) (ClubHour, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO club_hours (weekday, is_open, open_clock, close_clock)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (weekday) DO UPDATE
		SET is_open = excluded.is_open,
		    open_clock = excluded.open_clock,
		    close_clock = excluded.close_clock
		RETURNING `+clubHourColumns,
		arg.Weekday,
		arg.IsOpen,
		arg.OpenClock,
		arg.CloseClock,
	)
	var h ClubHour
	err := row.Scan(&h.Weekday, &h.IsOpen, &h.OpenClock, &h.CloseClock)
	return h, err
}

func (q *Queries) CountClubHours(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM club_hours`).Scan(&count)
	return count, err
}
