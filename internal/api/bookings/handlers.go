// internal/api/bookings/handlers.go
package bookings

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
	queryTimeout = 5 * time.Second
	pathPrefix   = "/api/v1/bookings/"
)

var service *booking.Service

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *booking.Service) {
	service = s
}

type bookingPayload struct {
	Date       string `json:"date"`
	CourtID    int64  `json:"court_id"`
	StartClock string `json:"start_time"`
	EndClock   string `json:"end_time"`
	PlayerA    string `json:"player_a"`
	PlayerB    string `json:"player_b"`
	Notes      string `json:"notes"`
}

type bookingView struct {
	ID         int64     `json:"id"`
	Date       string    `json:"date"`
	CourtID    int64     `json:"court_id"`
	StartClock string    `json:"start_time"`
	EndClock   string    `json:"end_time"`
	Status     string    `json:"status"`
	PlayerA    string    `json:"player_a,omitempty"`
	PlayerB    string    `json:"player_b,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func viewOf(b db.Booking) bookingView {
	return bookingView{
		ID:         b.ID,
		Date:       b.Date,
		CourtID:    b.CourtID,
		StartClock: b.StartClock,
		EndClock:   b.EndClock,
		Status:     b.Status,
		PlayerA:    b.PlayerA.String,
		PlayerB:    b.PlayerB.String,
		Notes:      b.Notes.String,
		CreatedAt:  b.CreatedAt,
	}
}

func (p bookingPayload) params() booking.BookingParams {
	return booking.BookingParams{
		Date:       p.Date,
		CourtID:    p.CourtID,
		StartClock: p.StartClock,
		EndClock:   p.EndClock,
		PlayerA:    p.PlayerA,
		PlayerB:    p.PlayerB,
		Notes:      p.Notes,
	}
}

// POST /api/v1/bookings
func HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if service == nil {
		logger.Error().Msg("Booking handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var payload bookingPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	created, err := service.CreateManualBooking(ctx, payload.params())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("booking_id", created.ID).Int64("court_id", created.CourtID).Msg("Manual booking created")
	apiutil.WriteJSON(w, r, http.StatusCreated, viewOf(created))
}

// PUT /api/v1/bookings/{id}
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

	var payload bookingPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	updated, err := service.UpdateBooking(ctx, id, payload.params())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, r, http.StatusOK, viewOf(updated))
}

type movePayload struct {
	CourtID int64 `json:"court_id"`
}

// POST /api/v1/bookings/{id}/court
func HandleMoveCourt(w http.ResponseWriter, r *http.Request) {
	if service == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	id, err := apiutil.PathID(r, pathPrefix)
	if err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var payload movePayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if payload.CourtID <= 0 {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "court_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	moved, err := service.MoveBookingCourt(ctx, id, payload.CourtID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, r, http.StatusOK, viewOf(moved))
}

// DELETE /api/v1/bookings/{id}
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

	if err := service.DeleteBooking(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
