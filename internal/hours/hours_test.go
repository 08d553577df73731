package hours

import (
	"context"
	"errors"
	"testing"

	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/testutil"
	"github.com/courtside/courtmatch/internal/timeslot"
)

func mustClock(t *testing.T, value string) timeslot.Clock {
	t.Helper()
	clock, err := timeslot.ParseClock(value)
	if err != nil {
		t.Fatalf("parse clock %q: %v", value, err)
	}
	return clock
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		date string
		want int64
	}{
		{"2025-09-01", 0}, // Monday
		{"2025-09-04", 3}, // Thursday
		{"2025-09-06", 5}, // Saturday
		{"2025-09-07", 6}, // Sunday
	}
	for _, tt := range tests {
		got, err := Weekday(tt.date)
		if err != nil {
			t.Fatalf("Weekday(%q): %v", tt.date, err)
		}
		if got != tt.want {
			t.Errorf("Weekday(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestWeekday_BadDate(t *testing.T) {
	for _, date := range []string{"", "2025-13-01", "01-09-2025", "tomorrow"} {
		if _, err := Weekday(date); !errors.Is(err, ErrBadDate) {
			t.Errorf("Weekday(%q): expected ErrBadDate, got %v", date, err)
		}
	}
}

func TestForDate_SeededSchedule(t *testing.T) {
	database := testutil.NewSeededTestDB(t)
	resolver, err := NewResolver(database.Queries)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	open, close, isOpen, err := resolver.ForDate(context.Background(), "2025-09-01")
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if !isOpen {
		t.Fatal("expected Monday to be open")
	}
	if open != mustClock(t, "10:00") || close != mustClock(t, "22:00") {
		t.Fatalf("hours: [%s, %s)", open, close)
	}

	_, _, isOpen, err = resolver.ForDate(context.Background(), "2025-09-07")
	if err != nil {
		t.Fatalf("ForDate sunday: %v", err)
	}
	if isOpen {
		t.Fatal("expected Sunday to be closed")
	}
}

func TestForDate_MissingRuleFallsBack(t *testing.T) {
	// Unseeded database: no club_hours rows at all.
	database := testutil.NewTestDB(t)
	resolver, err := NewResolver(database.Queries)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	open, close, isOpen, err := resolver.ForDate(context.Background(), "2025-09-02")
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if !isOpen {
		t.Fatal("expected weekday fallback to be open")
	}
	if open != mustClock(t, "10:00") || close != mustClock(t, "22:00") {
		t.Fatalf("fallback hours: [%s, %s)", open, close)
	}

	_, _, isOpen, err = resolver.ForDate(context.Background(), "2025-09-07")
	if err != nil {
		t.Fatalf("ForDate sunday: %v", err)
	}
	if isOpen {
		t.Fatal("expected Sunday fallback to be closed")
	}
}

func TestClamp(t *testing.T) {
	database := testutil.NewSeededTestDB(t)
	resolver, err := NewResolver(database.Queries)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end string
		wantStart  string
		wantEnd    string
	}{
		{"inside hours", "11:00", "13:00", "11:00", "13:00"},
		{"spills before open", "08:00", "12:00", "10:00", "12:00"},
		{"spills past close", "20:00", "23:30", "20:00", "22:00"},
		{"spills both ways", "09:00", "23:00", "10:00", "22:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := resolver.Clamp(ctx, "2025-09-01", mustClock(t, tt.start), mustClock(t, tt.end))
			if err != nil {
				t.Fatalf("Clamp: %v", err)
			}
			if start.String() != tt.wantStart || end.String() != tt.wantEnd {
				t.Fatalf("clamped to [%s, %s), want [%s, %s)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestClamp_ClosedDay(t *testing.T) {
	database := testutil.NewSeededTestDB(t)
	resolver, err := NewResolver(database.Queries)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	_, _, err = resolver.Clamp(context.Background(), "2025-09-07", mustClock(t, "11:00"), mustClock(t, "13:00"))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestClamp_WindowEntirelyOutsideHours(t *testing.T) {
	database := testutil.NewSeededTestDB(t)
	resolver, err := NewResolver(database.Queries)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	for _, window := range [][2]string{{"07:00", "09:00"}, {"22:00", "23:00"}} {
		_, _, err := resolver.Clamp(context.Background(), "2025-09-01", mustClock(t, window[0]), mustClock(t, window[1]))
		if !errors.Is(err, ErrOutsideHours) {
			t.Fatalf("window [%s, %s): expected ErrOutsideHours, got %v", window[0], window[1], err)
		}
	}
}

func TestClamp_AdminConfiguredHours(t *testing.T) {
	database := testutil.NewSeededTestDB(t)
	resolver, err := NewResolver(database.Queries)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	ctx := context.Background()

	// Shorten Monday to an evening-only schedule.
	_, err = database.Queries.UpsertClubHours(ctx, db.UpsertClubHoursParams{
		Weekday:    0,
		IsOpen:     true,
		OpenClock:  "17:00",
		CloseClock: "21:00",
	})
	if err != nil {
		t.Fatalf("upsert hours: %v", err)
	}

	start, end, err := resolver.Clamp(ctx, "2025-09-01", mustClock(t, "10:00"), mustClock(t, "22:00"))
	if err != nil {
		t.Fatalf("Clamp: %v", err)
	}
	if start.String() != "17:00" || end.String() != "21:00" {
		t.Fatalf("clamped to [%s, %s)", start, end)
	}
}
