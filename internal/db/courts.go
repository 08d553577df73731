// internal/db/courts.go
package db

import "context"

func (q *Queries) ListCourts(ctx context.Context) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM courts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var c Court
		if err := rows.Scan(&c.ID); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (q *Queries) CountCourts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courts`).Scan(&count)
	return count, err
}

func (q *Queries) CreateCourt(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO courts (id) VALUES (?)`, id)
	return err
}
