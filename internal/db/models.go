// internal/db/models.go
package db

import (
	"database/sql"
	"time"
)

// Status values for play requests.
const (
	RequestStatusOpen    = "open"
	RequestStatusMatched = "matched"
	RequestStatusExpired = "expired"
)

// Status values for bookings.
const (
	BookingStatusTentative = "tentative"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Status values for match proposals.
const (
	ProposalStatusPending   = "pending_admin"
	ProposalStatusApproved  = "approved"
	ProposalStatusRejected  = "rejected"
	ProposalStatusCancelled = "cancelled"
)

// PlayRequest is a member's submitted availability window. Clocks are stored
// as "HH:MM" and dates as "YYYY-MM-DD".
type PlayRequest struct {
	ID              int64
	MemberName      string
	Level           int64
	Date            string
	StartClock      string
	EndClock        string
	DurationMinutes int64
	Notes           sql.NullString
	Status          string
	CreatedAt       time.Time
}

// Booking reserves one court for one interval on one date.
type Booking struct {
	ID         int64
	Date       string
	CourtID    int64
	StartClock string
	EndClock   string
	Status     string
	PlayerA    sql.NullString
	PlayerB    sql.NullString
	Notes      sql.NullString
	CreatedAt  time.Time
}

// MatchProposal is a suggested pairing awaiting an admin decision. Levels are
// snapshotted at proposal time so later request edits do not rewrite history.
type MatchProposal struct {
	ID         int64
	RequestAID int64
	RequestBID int64
	Date       string
	SlotStart  string
	SlotEnd    string
	CourtID    int64
	Status     string
	LevelA     int64
	LevelB     int64
	BookingID  sql.NullInt64
	CreatedAt  time.Time
}

type Court struct {
	ID int64
}

// ClubHour is the open/close rule for one weekday (0=Monday .. 6=Sunday).
type ClubHour struct {
	Weekday    int64
	IsOpen     bool
	OpenClock  string
	CloseClock string
}
