// internal/api/proposals/handlers.go
package proposals

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/api/apiutil"
	"github.com/courtside/courtmatch/internal/booking"
	"github.com/courtside/courtmatch/internal/db"
)

const (
	queryTimeout   = 5 * time.Second
	statusQueryKey = "status"
	pathPrefix     = "/api/v1/proposals/"
)

var (
	service *booking.Service
	queries *db.Queries
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *booking.Service, q *db.Queries) {
	service = s
	queries = q
}

type proposalView struct {
	ID         int64     `json:"id"`
	RequestAID int64     `json:"request_a_id"`
	RequestBID int64     `json:"request_b_id"`
	LevelA     int64     `json:"level_a"`
	LevelB     int64     `json:"level_b"`
	Date       string    `json:"date"`
	CourtID    int64     `json:"court_id"`
	SlotStart  string    `json:"slot_start"`
	SlotEnd    string    `json:"slot_end"`
	BookingID  *int64    `json:"booking_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func viewOf(proposal db.MatchProposal) proposalView {
	view := proposalView{
		ID:         proposal.ID,
		RequestAID: proposal.RequestAID,
		RequestBID: proposal.RequestBID,
		LevelA:     proposal.LevelA,
		LevelB:     proposal.LevelB,
		Date:       proposal.Date,
		CourtID:    proposal.CourtID,
		SlotStart:  proposal.SlotStart,
		SlotEnd:    proposal.SlotEnd,
		Status:     proposal.Status,
		CreatedAt:  proposal.CreatedAt,
	}
	if proposal.BookingID.Valid {
		id := proposal.BookingID.Int64
		view.BookingID = &id
	}
	return view
}

// GET /api/v1/proposals?status=pending_admin
func HandleList(w http.ResponseWriter, r *http.Request) {
	if queries == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := r.URL.Query().Get(statusQueryKey)
	if status == "" {
		status = db.ProposalStatusPending
	}
	switch status {
	case db.ProposalStatusPending, db.ProposalStatusApproved, db.ProposalStatusRejected, db.ProposalStatusCancelled:
	default:
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "unknown status "+status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	list, err := queries.ListMatchProposalsByStatus(ctx, status)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	views := make([]proposalView, 0, len(list))
	for _, proposal := range list {
		views = append(views, viewOf(proposal))
	}
	apiutil.WriteJSON(w, r, http.StatusOK, views)
}

// POST /api/v1/proposals/{id}/approve
func HandleApprove(w http.ResponseWriter, r *http.Request) {
	decide(w, r, "approve")
}

// POST /api/v1/proposals/{id}/reject
func HandleReject(w http.ResponseWriter, r *http.Request) {
	decide(w, r, "reject")
}

func decide(w http.ResponseWriter, r *http.Request, action string) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Proposal handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := apiutil.PathID(r, pathPrefix)
	if err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	if action == "approve" {
		err = service.ApproveProposal(ctx, id)
	} else {
		err = service.RejectProposal(ctx, id)
	}
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("proposal_id", id).Str("decision", action).Msg("Proposal decided")
	w.WriteHeader(http.StatusNoContent)
}
