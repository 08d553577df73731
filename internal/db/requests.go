// internal/db/requests.go
package db

import (
	"context"
	"database/sql"
	"fmt"
)

const playRequestColumns = `id, member_name, level, date, start_clock, end_clock, duration_minutes, notes, status, created_at`

func scanPlayRequest(row interface{ Scan(...interface{}) error }) (PlayRequest, error) {
	var r PlayRequest
	err := row.Scan(
		&r.ID,
		&r.MemberName,
		&r.Level,
		&r.Date,
		&r.StartClock,
		&r.EndClock,
		&r.DurationMinutes,
		&r.Notes,
		&r.Status,
		&r.CreatedAt,
	)
	return r, err
}

type CreatePlayRequestParams struct {
	MemberName      string
	Level           int64
	Date            string
	StartClock      string
	EndClock        string
	DurationMinutes int64
	Notes           sql.NullString
}

func (q *Queries) CreatePlayRequest(ctx context.Context, arg CreatePlayRequestParams) (PlayRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO play_requests (member_name, level, date, start_clock, end_clock, duration_minutes, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+playRequestColumns,
		arg.MemberName,
		arg.Level,
		arg.Date,
		arg.StartClock,
		arg.EndClock,
		arg.DurationMinutes,
		arg.Notes,
	)
	return scanPlayRequest(row)
}

func (q *Queries) GetPlayRequest(ctx context.Context, id int64) (PlayRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+playRequestColumns+`
		FROM play_requests
		WHERE id = ?`,
		id,
	)
	return scanPlayRequest(row)
}

type ListOpenCandidatesParams struct {
	Date      string
	ExcludeID int64
	MinLevel  int64
	MaxLevel  int64
}

// ListOpenCandidates returns the open requests on a date within a level band,
// excluding the triggering request. Ordered by id so score ties resolve to the
// lowest candidate id.
func (q *Queries) ListOpenCandidates(ctx context.Context, arg ListOpenCandidatesParams) ([]PlayRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+playRequestColumns+`
		FROM play_requests
		WHERE date = ?
		  AND status = 'open'
		  AND id != ?
		  AND level BETWEEN ? AND ?
		ORDER BY id`,
		arg.Date,
		arg.ExcludeID,
		arg.MinLevel,
		arg.MaxLevel,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []PlayRequest
	for rows.Next() {
		r, err := scanPlayRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (q *Queries) ListPlayRequestsByStatus(ctx context.Context, status string) ([]PlayRequest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+playRequestColumns+`
		FROM play_requests
		WHERE status = ?
		ORDER BY created_at DESC`,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []PlayRequest
	for rows.Next() {
		r, err := scanPlayRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

type UpdatePlayRequestParams struct {
	ID              int64
	MemberName      string
	Level           int64
	Date            string
	StartClock      string
	EndClock        string
	DurationMinutes int64
	Notes           sql.NullString
}

func (q *Queries) UpdatePlayRequest(ctx context.Context, arg UpdatePlayRequestParams) (PlayRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE play_requests
		SET member_name = ?, level = ?, date = ?, start_clock = ?, end_clock = ?, duration_minutes = ?, notes = ?
		WHERE id = ?
		RETURNING `+playRequestColumns,
		arg.MemberName,
		arg.Level,
		arg.Date,
		arg.StartClock,
		arg.EndClock,
		arg.DurationMinutes,
		arg.Notes,
		arg.ID,
	)
	return scanPlayRequest(row)
}

type UpdatePlayRequestStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) UpdatePlayRequestStatus(ctx context.Context, arg UpdatePlayRequestStatusParams) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE play_requests SET status = ? WHERE id = ?`,
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

func (q *Queries) DeletePlayRequest(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM play_requests WHERE id = ?`, id)
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

// ExpirePlayRequestsBefore marks open requests dated strictly before the given
// date as expired and reports how many rows changed.
func (q *Queries) ExpirePlayRequestsBefore(ctx context.Context, date string) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		UPDATE play_requests
		SET status = 'expired'
		WHERE status = 'open' AND date < ?`,
		date,
	)
	if err != nil {
		return 0, fmt.Errorf("expire play requests: %w", err)
	}
	return result.RowsAffected()
}
