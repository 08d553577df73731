// Package matching implements the greedy autopair engine: given an open play
// request it finds the best-scoring compatible partner, then the first free
// court slot inside their shared window, and records a tentative booking plus
// a proposal for the admin to decide.
package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/availability"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/hours"
	"github.com/courtside/courtmatch/internal/timeslot"
)

// levelBand restricts candidates to partners within one skill level either
// way.
const levelBand = 1

// levelPenaltyWeight converts one level of skill difference into minutes of
// overlap the candidate must make up. With a weight of 5 a full level costs
// five overlap-minutes.
const levelPenaltyWeight = 5

type Engine struct {
	db          *db.DB
	stepMinutes int
}

func NewEngine(database *db.DB, stepMinutes int) (*Engine, error) {
	if database == nil {
		return nil, errors.New("matching engine requires a database")
	}
	if stepMinutes <= 0 {
		stepMinutes = timeslot.DefaultStepMinutes
	}
	return &Engine{db: database, stepMinutes: stepMinutes}, nil
}

type candidate struct {
	request db.PlayRequest
	start   timeslot.Clock
	end     timeslot.Clock
}

// TryAutopair attempts one match for the given request. It reports whether a
// proposal was created. A request that is missing or no longer open is a
// no-op; any store failure abandons the attempt and leaves both requests open
// for the next triggering event.
//
// The whole attempt, including the court-freeness check and the tentative
// booking insert, runs in a single transaction so concurrent submissions
// cannot double-book a court.
func (e *Engine) TryAutopair(ctx context.Context, requestID int64) (bool, error) {
	if e == nil || e.db == nil {
		return false, errors.New("matching engine not initialized")
	}

	logger := log.Ctx(ctx).With().
		Str("component", "matching_engine").
		Int64("request_id", requestID).
		Logger()

	var matched bool
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		request, err := txdb.Queries.GetPlayRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				logger.Debug().Msg("Request missing, skipping autopair")
				return nil
			}
			return fmt.Errorf("load request %d: %w", requestID, err)
		}
		if request.Status != db.RequestStatusOpen {
			logger.Debug().Str("status", request.Status).Msg("Request not open, skipping autopair")
			return nil
		}

		resolver, err := hours.NewResolver(txdb.Queries)
		if err != nil {
			return err
		}

		best, err := e.pickCandidate(ctx, txdb.Queries, resolver, request)
		if err != nil {
			return err
		}
		if best == nil {
			logger.Debug().Msg("No compatible candidate, request stays open")
			return nil
		}

		matched, err = e.allocateSlot(ctx, txdb, request, *best)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("Autopair attempt abandoned")
		return false, err
	}

	return matched, nil
}

// pickCandidate scores the open same-date requests inside the level band and
// returns the winner with its clamped overlap window, or nil when none
// survive. Scoring keeps the strictly highest score; candidates arrive
// ordered by id, so ties resolve to the lowest candidate id.
func (e *Engine) pickCandidate(ctx context.Context, q *db.Queries, resolver *hours.Resolver, request db.PlayRequest) (*candidate, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "matching_engine").
		Int64("request_id", request.ID).
		Logger()

	requestStart, requestEnd, err := requestWindow(request)
	if err != nil {
		return nil, err
	}

	candidates, err := q.ListOpenCandidates(ctx, db.ListOpenCandidatesParams{
		Date:      request.Date,
		ExcludeID: request.ID,
		MinLevel:  request.Level - levelBand,
		MaxLevel:  request.Level + levelBand,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidates for request %d: %w", request.ID, err)
	}

	var best *candidate
	bestScore := -1 << 30
	for _, other := range candidates {
		otherStart, otherEnd, err := requestWindow(other)
		if err != nil {
			return nil, err
		}

		overlapMinutes, overlapStart, overlapEnd := timeslot.Overlap(requestStart, requestEnd, otherStart, otherEnd)
		if overlapMinutes <= 0 {
			continue
		}

		clampedStart, clampedEnd, err := resolver.Clamp(ctx, request.Date, overlapStart, overlapEnd)
		if err != nil {
			if errors.Is(err, hours.ErrClosed) || errors.Is(err, hours.ErrOutsideHours) {
				continue
			}
			return nil, err
		}

		levelGap := request.Level - other.Level
		if levelGap < 0 {
			levelGap = -levelGap
		}
		score := overlapMinutes - levelPenaltyWeight*int(levelGap)
		if score > bestScore {
			best = &candidate{request: other, start: clampedStart, end: clampedEnd}
			bestScore = score
		}
	}

	if best != nil {
		logger.Debug().
			Int64("candidate_id", best.request.ID).
			Int("score", bestScore).
			Str("window_start", best.start.String()).
			Str("window_end", best.end.String()).
			Msg("Selected autopair candidate")
	}
	return best, nil
}

// allocateSlot walks the discretized slots of the winning overlap window,
// earliest first, and courts in ascending id order, committing the first free
// combination as a tentative booking with a pending proposal.
func (e *Engine) allocateSlot(ctx context.Context, txdb *db.DB, request db.PlayRequest, best candidate) (bool, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "matching_engine").
		Int64("request_id", request.ID).
		Int64("candidate_id", best.request.ID).
		Logger()

	checker, err := availability.NewChecker(txdb.Queries)
	if err != nil {
		return false, err
	}

	courts, err := txdb.Queries.ListCourts(ctx)
	if err != nil {
		return false, fmt.Errorf("list courts: %w", err)
	}

	for _, slot := range timeslot.Slots(best.start, best.end, int(request.DurationMinutes), e.stepMinutes) {
		for _, court := range courts {
			free, err := checker.CourtIsFree(ctx, request.Date, court.ID, slot.Start, slot.End)
			if err != nil {
				return false, err
			}
			if !free {
				continue
			}

			booking, err := txdb.Queries.CreateBooking(ctx, db.CreateBookingParams{
				Date:       request.Date,
				CourtID:    court.ID,
				StartClock: slot.Start.String(),
				EndClock:   slot.End.String(),
				PlayerA:    sql.NullString{String: request.MemberName, Valid: true},
				PlayerB:    sql.NullString{String: best.request.MemberName, Valid: true},
				Status:     db.BookingStatusTentative,
			})
			if err != nil {
				return false, fmt.Errorf("create tentative booking: %w", err)
			}

			proposal, err := txdb.Queries.CreateMatchProposal(ctx, db.CreateMatchProposalParams{
				RequestAID: request.ID,
				RequestBID: best.request.ID,
				Date:       request.Date,
				SlotStart:  slot.Start.String(),
				SlotEnd:    slot.End.String(),
				CourtID:    court.ID,
				LevelA:     request.Level,
				LevelB:     best.request.Level,
				BookingID:  booking.ID,
			})
			if err != nil {
				return false, fmt.Errorf("create match proposal: %w", err)
			}

			logger.Info().
				Int64("proposal_id", proposal.ID).
				Int64("booking_id", booking.ID).
				Int64("court_id", court.ID).
				Str("slot_start", slot.Start.String()).
				Str("slot_end", slot.End.String()).
				Msg("Created match proposal with tentative booking")
			return true, nil
		}
	}

	logger.Debug().Msg("No free court slot in overlap window, requests stay open")
	return false, nil
}

func requestWindow(request db.PlayRequest) (timeslot.Clock, timeslot.Clock, error) {
	start, err := timeslot.ParseClock(request.StartClock)
	if err != nil {
		return 0, 0, fmt.Errorf("stored start clock for request %d: %w", request.ID, err)
	}
	end, err := timeslot.ParseClock(request.EndClock)
	if err != nil {
		return 0, 0, fmt.Errorf("stored end clock for request %d: %w", request.ID, err)
	}
	return start, end, nil
}
