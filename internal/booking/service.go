// Package booking carries the administrative operations around the matching
// engine: request CRUD, proposal decisions, manual bookings, and booking
// edits. Every mutation runs transactionally and re-checks entity status
// first, so repeated admin clicks short-circuit instead of double-applying.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/availability"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/hours"
	"github.com/courtside/courtmatch/internal/matching"
	"github.com/courtside/courtmatch/internal/timeslot"
)

// DefaultDurationMinutes is the desired match length assumed when a request
// does not specify one.
const DefaultDurationMinutes = 45

var (
	ErrNotFound      = errors.New("not found")
	ErrPrecondition  = errors.New("entity is not in the required status")
	ErrConflict      = errors.New("court is not free for the requested slot")
	ErrInvalidWindow = errors.New("end time must be after start time")
)

type Service struct {
	db              *db.DB
	engine          *matching.Engine
	defaultDuration int64
}

func NewService(database *db.DB, engine *matching.Engine, defaultDurationMinutes int64) (*Service, error) {
	if database == nil {
		return nil, errors.New("booking service requires a database")
	}
	if engine == nil {
		return nil, errors.New("booking service requires a matching engine")
	}
	if defaultDurationMinutes <= 0 {
		defaultDurationMinutes = DefaultDurationMinutes
	}
	return &Service{db: database, engine: engine, defaultDuration: defaultDurationMinutes}, nil
}

// RequestParams carries a member's availability submission. Clocks are
// "HH:MM", the date "YYYY-MM-DD".
type RequestParams struct {
	MemberName      string
	Level           int64
	Date            string
	StartClock      string
	EndClock        string
	DurationMinutes int64
	Notes           string
}

func (p RequestParams) validate() (timeslot.Clock, timeslot.Clock, error) {
	if strings.TrimSpace(p.MemberName) == "" {
		return 0, 0, errors.New("member name is required")
	}
	if p.Level < 1 || p.Level > 5 {
		return 0, 0, errors.New("level must be between 1 and 5")
	}
	if p.DurationMinutes <= 0 {
		return 0, 0, errors.New("duration must be positive")
	}
	start, err := timeslot.ParseClock(p.StartClock)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeslot.ParseClock(p.EndClock)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, ErrInvalidWindow
	}
	return start, end, nil
}

// CreateRequest validates and clamps the submitted window, stores the open
// request, and immediately attempts an autopair. A failed match attempt never
// fails the submission.
func (s *Service) CreateRequest(ctx context.Context, params RequestParams) (db.PlayRequest, error) {
	if params.DurationMinutes == 0 {
		params.DurationMinutes = s.defaultDuration
	}
	start, end, err := params.validate()
	if err != nil {
		return db.PlayRequest{}, err
	}

	resolver, err := hours.NewResolver(s.db.Queries)
	if err != nil {
		return db.PlayRequest{}, err
	}
	clampedStart, clampedEnd, err := resolver.Clamp(ctx, params.Date, start, end)
	if err != nil {
		return db.PlayRequest{}, err
	}

	request, err := s.db.Queries.CreatePlayRequest(ctx, db.CreatePlayRequestParams{
		MemberName:      strings.TrimSpace(params.MemberName),
		Level:           params.Level,
		Date:            params.Date,
		StartClock:      clampedStart.String(),
		EndClock:        clampedEnd.String(),
		DurationMinutes: params.DurationMinutes,
		Notes:           nullString(params.Notes),
	})
	if err != nil {
		return db.PlayRequest{}, fmt.Errorf("create play request: %w", err)
	}

	s.tryAutopair(ctx, request.ID)
	return request, nil
}

// UpdateRequest edits an open request and re-attempts matching. Requests that
// are already matched or expired cannot be edited.
func (s *Service) UpdateRequest(ctx context.Context, id int64, params RequestParams) (db.PlayRequest, error) {
	if params.DurationMinutes == 0 {
		params.DurationMinutes = s.defaultDuration
	}
	start, end, err := params.validate()
	if err != nil {
		return db.PlayRequest{}, err
	}

	resolver, err := hours.NewResolver(s.db.Queries)
	if err != nil {
		return db.PlayRequest{}, err
	}
	clampedStart, clampedEnd, err := resolver.Clamp(ctx, params.Date, start, end)
	if err != nil {
		return db.PlayRequest{}, err
	}

	var updated db.PlayRequest
	err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
		request, err := txdb.Queries.GetPlayRequest(ctx, id)
		if err != nil {
			return wrapNotFound(err, "request %d", id)
		}
		if request.Status != db.RequestStatusOpen {
			return fmt.Errorf("%w: request %d is %s", ErrPrecondition, id, request.Status)
		}

		updated, err = txdb.Queries.UpdatePlayRequest(ctx, db.UpdatePlayRequestParams{
			ID:              id,
			MemberName:      strings.TrimSpace(params.MemberName),
			Level:           params.Level,
			Date:            params.Date,
			StartClock:      clampedStart.String(),
			EndClock:        clampedEnd.String(),
			DurationMinutes: params.DurationMinutes,
			Notes:           nullString(params.Notes),
		})
		if err != nil {
			return fmt.Errorf("update play request %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return db.PlayRequest{}, err
	}

	s.tryAutopair(ctx, id)
	return updated, nil
}

// DeleteRequest removes an open request along with every proposal that
// references it, releasing the tentative bookings pending proposals held.
// Rejected and cancelled proposals go too; their bookings are already
// cancelled.
func (s *Service) DeleteRequest(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, func(txdb *db.DB) error {
		request, err := txdb.Queries.GetPlayRequest(ctx, id)
		if err != nil {
			return wrapNotFound(err, "request %d", id)
		}
		if request.Status != db.RequestStatusOpen {
			return fmt.Errorf("%w: request %d is %s", ErrPrecondition, id, request.Status)
		}

		pending, err := txdb.Queries.ListPendingProposalsForRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("list pending proposals for request %d: %w", id, err)
		}
		for _, proposal := range pending {
			if !proposal.BookingID.Valid {
				continue
			}
			err := txdb.Queries.UpdateBookingStatus(ctx, db.UpdateBookingStatusParams{
				Status: db.BookingStatusCancelled,
				ID:     proposal.BookingID.Int64,
			})
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("release tentative booking %d: %w", proposal.BookingID.Int64, err)
			}
		}

		if err := txdb.Queries.DeleteProposalsForRequest(ctx, id); err != nil {
			return fmt.Errorf("delete proposals for request %d: %w", id, err)
		}
		if err := txdb.Queries.DeletePlayRequest(ctx, id); err != nil {
			return fmt.Errorf("delete play request %d: %w", id, err)
		}
		return nil
	})
}

// ApproveProposal confirms the tentative booking and marks both requests
// matched. Only pending proposals can be approved.
func (s *Service) ApproveProposal(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, func(txdb *db.DB) error {
		proposal, err := txdb.Queries.GetMatchProposal(ctx, id)
		if err != nil {
			return wrapNotFound(err, "proposal %d", id)
		}
		if proposal.Status != db.ProposalStatusPending {
			return fmt.Errorf("%w: proposal %d is %s", ErrPrecondition, id, proposal.Status)
		}
		if !proposal.BookingID.Valid {
			return fmt.Errorf("%w: proposal %d has no booking", ErrPrecondition, id)
		}

		err = txdb.Queries.UpdateBookingStatus(ctx, db.UpdateBookingStatusParams{
			Status: db.BookingStatusConfirmed,
			ID:     proposal.BookingID.Int64,
		})
		if err != nil {
			return fmt.Errorf("confirm booking %d: %w", proposal.BookingID.Int64, err)
		}

		for _, requestID := range []int64{proposal.RequestAID, proposal.RequestBID} {
			err := txdb.Queries.UpdatePlayRequestStatus(ctx, db.UpdatePlayRequestStatusParams{
				Status: db.RequestStatusMatched,
				ID:     requestID,
			})
			if err != nil {
				return fmt.Errorf("mark request %d matched: %w", requestID, err)
			}
		}

		err = txdb.Queries.UpdateMatchProposalStatus(ctx, db.UpdateMatchProposalStatusParams{
			Status: db.ProposalStatusApproved,
			ID:     id,
		})
		if err != nil {
			return fmt.Errorf("approve proposal %d: %w", id, err)
		}
		return nil
	})
}

// RejectProposal cancels the tentative booking, freeing its court, and leaves
// both requests open so a future triggering event can re-match them.
func (s *Service) RejectProposal(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, func(txdb *db.DB) error {
		proposal, err := txdb.Queries.GetMatchProposal(ctx, id)
		if err != nil {
			return wrapNotFound(err, "proposal %d", id)
		}
		if proposal.Status != db.ProposalStatusPending {
			return fmt.Errorf("%w: proposal %d is %s", ErrPrecondition, id, proposal.Status)
		}

		if proposal.BookingID.Valid {
			err := txdb.Queries.UpdateBookingStatus(ctx, db.UpdateBookingStatusParams{
				Status: db.BookingStatusCancelled,
				ID:     proposal.BookingID.Int64,
			})
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("cancel booking %d: %w", proposal.BookingID.Int64, err)
			}
		}

		err = txdb.Queries.UpdateMatchProposalStatus(ctx, db.UpdateMatchProposalStatusParams{
			Status: db.ProposalStatusRejected,
			ID:     id,
		})
		if err != nil {
			return fmt.Errorf("reject proposal %d: %w", id, err)
		}
		return nil
	})
}

// BookingParams carries a manual or edited booking.
type BookingParams struct {
	Date       string
	CourtID    int64
	StartClock string
	EndClock   string
	PlayerA    string
	PlayerB    string
	Notes      string
}

func (p BookingParams) validate() (timeslot.Clock, timeslot.Clock, error) {
	if p.CourtID <= 0 {
		return 0, 0, errors.New("court id is required")
	}
	start, err := timeslot.ParseClock(p.StartClock)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeslot.ParseClock(p.EndClock)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, ErrInvalidWindow
	}
	return start, end, nil
}

// CreateManualBooking inserts a confirmed booking directly, bypassing
// matching. The court must be free for the clamped window.
func (s *Service) CreateManualBooking(ctx context.Context, params BookingParams) (db.Booking, error) {
	start, end, err := params.validate()
	if err != nil {
		return db.Booking{}, err
	}

	var booking db.Booking
	err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
		resolver, err := hours.NewResolver(txdb.Queries)
		if err != nil {
			return err
		}
		clampedStart, clampedEnd, err := resolver.Clamp(ctx, params.Date, start, end)
		if err != nil {
			return err
		}

		checker, err := availability.NewChecker(txdb.Queries)
		if err != nil {
			return err
		}
		free, err := checker.CourtIsFree(ctx, params.Date, params.CourtID, clampedStart, clampedEnd)
		if err != nil {
			return err
		}
		if !free {
			return fmt.Errorf("%w: court %d on %s", ErrConflict, params.CourtID, params.Date)
		}

		booking, err = txdb.Queries.CreateBooking(ctx, db.CreateBookingParams{
			Date:       params.Date,
			CourtID:    params.CourtID,
			StartClock: clampedStart.String(),
			EndClock:   clampedEnd.String(),
			Status:     db.BookingStatusConfirmed,
			PlayerA:    nullString(params.PlayerA),
			PlayerB:    nullString(params.PlayerB),
			Notes:      nullString(params.Notes),
		})
		if err != nil {
			return fmt.Errorf("create manual booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return db.Booking{}, err
	}
	return booking, nil
}

// UpdateBooking rewrites a booking's slot, court, players, and notes. The
// availability check excludes the booking itself so an unchanged slot never
// conflicts with its own row.
func (s *Service) UpdateBooking(ctx context.Context, id int64, params BookingParams) (db.Booking, error) {
	start, end, err := params.validate()
	if err != nil {
		return db.Booking{}, err
	}

	var updated db.Booking
	err = s.db.RunInTx(ctx, func(txdb *db.DB) error {
		if _, err := txdb.Queries.GetBooking(ctx, id); err != nil {
			return wrapNotFound(err, "booking %d", id)
		}

		resolver, err := hours.NewResolver(txdb.Queries)
		if err != nil {
			return err
		}
		clampedStart, clampedEnd, err := resolver.Clamp(ctx, params.Date, start, end)
		if err != nil {
			return err
		}

		checker, err := availability.NewChecker(txdb.Queries)
		if err != nil {
			return err
		}
		free, err := checker.CourtIsFreeExcluding(ctx, params.Date, params.CourtID, clampedStart, clampedEnd, id)
		if err != nil {
			return err
		}
		if !free {
			return fmt.Errorf("%w: court %d on %s", ErrConflict, params.CourtID, params.Date)
		}

		updated, err = txdb.Queries.UpdateBooking(ctx, db.UpdateBookingParams{
			ID:         id,
			Date:       params.Date,
			CourtID:    params.CourtID,
			StartClock: clampedStart.String(),
			EndClock:   clampedEnd.String(),
			PlayerA:    nullString(params.PlayerA),
			PlayerB:    nullString(params.PlayerB),
			Notes:      nullString(params.Notes),
		})
		if err != nil {
			return fmt.Errorf("update booking %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return db.Booking{}, err
	}
	return updated, nil
}

// MoveBookingCourt reassigns a booking to another court, keeping its slot.
// Moving to the court it already occupies is a no-op.
func (s *Service) MoveBookingCourt(ctx context.Context, id, courtID int64) (db.Booking, error) {
	if courtID <= 0 {
		return db.Booking{}, errors.New("court id is required")
	}

	var moved db.Booking
	err := s.db.RunInTx(ctx, func(txdb *db.DB) error {
		booking, err := txdb.Queries.GetBooking(ctx, id)
		if err != nil {
			return wrapNotFound(err, "booking %d", id)
		}
		if booking.CourtID == courtID {
			moved = booking
			return nil
		}

		start, err := timeslot.ParseClock(booking.StartClock)
		if err != nil {
			return fmt.Errorf("stored start clock for booking %d: %w", id, err)
		}
		end, err := timeslot.ParseClock(booking.EndClock)
		if err != nil {
			return fmt.Errorf("stored end clock for booking %d: %w", id, err)
		}

		checker, err := availability.NewChecker(txdb.Queries)
		if err != nil {
			return err
		}
		free, err := checker.CourtIsFree(ctx, booking.Date, courtID, start, end)
		if err != nil {
			return err
		}
		if !free {
			return fmt.Errorf("%w: court %d on %s", ErrConflict, courtID, booking.Date)
		}

		err = txdb.Queries.UpdateBookingCourt(ctx, db.UpdateBookingCourtParams{
			CourtID: courtID,
			ID:      id,
		})
		if err != nil {
			return fmt.Errorf("move booking %d to court %d: %w", id, courtID, err)
		}

		moved = booking
		moved.CourtID = courtID
		return nil
	})
	if err != nil {
		return db.Booking{}, err
	}
	return moved, nil
}

// DeleteBooking removes a booking outright, force-cancelling any pending
// proposal that referenced it.
func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, func(txdb *db.DB) error {
		if _, err := txdb.Queries.GetBooking(ctx, id); err != nil {
			return wrapNotFound(err, "booking %d", id)
		}
		if err := txdb.Queries.CancelPendingProposalForBooking(ctx, id); err != nil {
			return fmt.Errorf("cancel proposal for booking %d: %w", id, err)
		}
		if err := txdb.Queries.DeleteBooking(ctx, id); err != nil {
			return fmt.Errorf("delete booking %d: %w", id, err)
		}
		return nil
	})
}

// ExpireStaleRequests marks open requests dated before today as expired.
// Invoked by the nightly housekeeping job.
func (s *Service) ExpireStaleRequests(ctx context.Context, now time.Time) (int64, error) {
	return s.db.Queries.ExpirePlayRequestsBefore(ctx, now.Format("2006-01-02"))
}

// tryAutopair runs a match attempt after a request mutation. Matching
// failures are logged and swallowed; the request stays open either way.
func (s *Service) tryAutopair(ctx context.Context, requestID int64) {
	if _, err := s.engine.TryAutopair(ctx, requestID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int64("request_id", requestID).Msg("Autopair attempt failed after request change")
	}
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("load %s: %w", fmt.Sprintf(format, args...), err)
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
