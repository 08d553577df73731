// internal/db/proposals.go
package db

import (
	"context"
	"database/sql"
)

const matchProposalColumns = `id, request_a_id, request_b_id, date, slot_start, slot_end, court_id, status, level_a, level_b, booking_id, created_at`

func scanMatchProposal(row interface{ Scan(...interface{}) error }) (MatchProposal, error) {
	var p MatchProposal
	err := row.Scan(
		&p.ID,
		&p.RequestAID,
		&p.RequestBID,
		&p.Date,
		&p.SlotStart,
		&p.SlotEnd,
		&p.CourtID,
		&p.Status,
		&p.LevelA,
		&p.LevelB,
		&p.BookingID,
		&p.CreatedAt,
	)
	return p, err
}

type CreateMatchProposalParams struct {
	RequestAID int64
	RequestBID int64
	Date       string
	SlotStart  string
	SlotEnd    string
	CourtID    int64
	LevelA     int64
	LevelB     int64
	BookingID  int64
}

func (q *Queries) CreateMatchProposal(ctx context.Context, arg CreateMatchProposalParams) (MatchProposal, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO match_proposals (request_a_id, request_b_id, date, slot_start, slot_end, court_id, level_a, level_b, booking_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+matchProposalColumns,
		arg.RequestAID,
		arg.RequestBID,
		arg.Date,
		arg.SlotStart,
		arg.SlotEnd,
		arg.CourtID,
		arg.LevelA,
		arg.LevelB,
		arg.BookingID,
	)
	return scanMatchProposal(row)
}

func (q *Queries) GetMatchProposal(ctx context.Context, id int64) (MatchProposal, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+matchProposalColumns+`
		FROM match_proposals
		WHERE id = ?`,
		id,
	)
	return scanMatchProposal(row)
}

func (q *Queries) GetMatchProposalByBooking(ctx context.Context, bookingID int64) (MatchProposal, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+matchProposalColumns+`
		FROM match_proposals
		WHERE booking_id = ?
		ORDER BY created_at DESC
		LIMIT 1`,
		bookingID,
	)
	return scanMatchProposal(row)
}

func (q *Queries) ListMatchProposalsByStatus(ctx context.Context, status string) ([]MatchProposal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+matchProposalColumns+`
		FROM match_proposals
		WHERE status = ?
		ORDER BY created_at DESC`,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []MatchProposal
	for rows.Next() {
		p, err := scanMatchProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

type UpdateMatchProposalStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) UpdateMatchProposalStatus(ctx context.Context, arg UpdateMatchProposalStatusParams) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE match_proposals SET status = ? WHERE id = ?`,
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

// CancelPendingProposalForBooking force-cancels the pending proposal attached
// to a booking, if any. Used when a booking is deleted out from under its
// proposal.
func (q *Queries) CancelPendingProposalForBooking(ctx context.Context, bookingID int64) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE match_proposals
		SET status = 'cancelled'
		WHERE booking_id = ? AND status = 'pending_admin'`,
		bookingID,
	)
	return err
}

// ListPendingProposalsForRequest returns the pending proposals that involve
// the request on either side.
func (q *Queries) ListPendingProposalsForRequest(ctx context.Context, requestID int64) ([]MatchProposal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+matchProposalColumns+`
		FROM match_proposals
		WHERE (request_a_id = ? OR request_b_id = ?)
		  AND status = 'pending_admin'
		ORDER BY id`,
		requestID,
		requestID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []MatchProposal
	for rows.Next() {
		p, err := scanMatchProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// DeleteProposalsForRequest removes every proposal involving the request on
// either side, whatever its status. Proposal rows hold NOT NULL references to
// both requests, so they must go before the request row can.
func (q *Queries) DeleteProposalsForRequest(ctx context.Context, requestID int64) error {
	_, err := q.db.ExecContext(ctx, `
		DELETE FROM match_proposals
		WHERE request_a_id = ? OR request_b_id = ?`,
		requestID,
		requestID,
	)
	return err
}
