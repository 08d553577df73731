// internal/api/requests/handlers.go
package requests

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
	pathPrefix     = "/api/v1/requests/"
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

type requestPayload struct {
	MemberName      string `json:"member_name"`
	Level           int64  `json:"level"`
	Date            string `json:"date"`
	StartClock      string `json:"start_time"`
	EndClock        string `json:"end_time"`
	DurationMinutes int64  `json:"duration_minutes"`
	Notes           string `json:"notes"`
}

type requestView struct {
	ID              int64     `json:"id"`
	MemberName      string    `json:"member_name"`
	Level           int64     `json:"level"`
	Date            string    `json:"date"`
	StartClock      string    `json:"start_time"`
	EndClock        string    `json:"end_time"`
	DurationMinutes int64     `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func viewOf(request db.PlayRequest) requestView {
	return requestView{
		ID:              request.ID,
		MemberName:      request.MemberName,
		Level:           request.Level,
		Date:            request.Date,
		StartClock:      request.StartClock,
		EndClock:        request.EndClock,
		DurationMinutes: request.DurationMinutes,
		Notes:           request.Notes.String,
		Status:          request.Status,
		CreatedAt:       request.CreatedAt,
	}
}

func (p requestPayload) params() booking.RequestParams {
	// A zero duration means the service default.
	return booking.RequestParams{
		MemberName:      p.MemberName,
		Level:           p.Level,
		Date:            p.Date,
		StartClock:      p.StartClock,
		EndClock:        p.EndClock,
		DurationMinutes: p.DurationMinutes,
		Notes:           p.Notes,
	}
}

// POST /api/v1/requests
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Request handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var payload requestPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	request, err := service.CreateRequest(ctx, payload.params())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("request_id", request.ID).Str("member", request.MemberName).Msg("Play request created")
	apiutil.WriteJSON(w, r, http.StatusCreated, viewOf(request))
}

// GET /api/v1/requests?status=open
func HandleList(w http.ResponseWriter, r *http.Request) {
	if queries == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := r.URL.Query().Get(statusQueryKey)
	if status == "" {
		status = db.RequestStatusOpen
	}
	switch status {
	case db.RequestStatusOpen, db.RequestStatusMatched, db.RequestStatusExpired:
	default:
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "unknown status "+status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	list, err := queries.ListPlayRequestsByStatus(ctx, status)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	views := make([]requestView, 0, len(list))
	for _, request := range list {
		views = append(views, viewOf(request))
	}
	apiutil.WriteJSON(w, r, http.StatusOK, views)
}

// PUT /api/v1/requests/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := apiutil.PathID(r, pathPrefix)
	if err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var payload requestPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	request, err := service.UpdateRequest(ctx, id, payload.params())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, r, http.StatusOK, viewOf(request))
}

// DELETE /api/v1/requests/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	if service == nil {
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

	if err := service.DeleteRequest(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
