// internal/db/seed.go
package db

import (
	"context"
	"fmt"
)

const defaultCourtCount = 4

// Default weekly schedule: Monday through Saturday 10:00-22:00, Sunday closed.
// Weekday 0 is Monday.
var defaultClubHours = []UpsertClubHoursParams{
	{Weekday: 0, IsOpen: true, OpenClock: "10:00", CloseClock: "22:00"},
	{Weekday: 1, IsOpen: true, OpenClock: "10:00", CloseClock: "22:00"},
	{Weekday: 2, IsOpen: true, OpenClock: "10:00", CloseClock: "22:00"},
	{Weekday: 3, IsOpen: true, OpenClock: "10:00", CloseClock: "22:00"},
	{Weekday: 4, IsOpen: true, OpenClock: "10:00", CloseClock: "22:00"},
	{Weekday: 5, IsOpen: true, OpenClock: "10:00", CloseClock: "22:00"},
	{Weekday: 6, IsOpen: false, OpenClock: "00:00", CloseClock: "00:00"},
}

// Seed inserts the fixed court set and the default weekly hours when the
// corresponding tables are empty. Safe to call on every startup.
func (db *DB) Seed(ctx context.Context) error {
	return db.RunInTx(ctx, func(txdb *DB) error {
		courts, err := txdb.Queries.CountCourts(ctx)
		if err != nil {
			return fmt.Errorf("count courts: %w", err)
		}
		if courts == 0 {
			for id := int64(1); id <= defaultCourtCount; id++ {
				if err := txdb.Queries.CreateCourt(ctx, id); err != nil {
					return fmt.Errorf("seed court %d: %w", id, err)
				}
			}
		}

		hours, err := txdb.Queries.CountClubHours(ctx)
		if err != nil {
			return fmt.Errorf("count club hours: %w", err)
		}
		if hours == 0 {
			for _, rule := range defaultClubHours {
				if _, err := txdb.Queries.UpsertClubHours(ctx, rule); err != nil {
					return fmt.Errorf("seed club hours weekday %d: %w", rule.Weekday, err)
				}
			}
		}

		return nil
	})
}
