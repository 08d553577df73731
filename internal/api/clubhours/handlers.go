// internal/api/clubhours/handlers.go
package clubhours

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/api/apiutil"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/timeslot"
)

const (
	queryTimeout = 5 * time.Second
	pathPrefix   = "/api/v1/club-hours/"
)

var queries *db.Queries

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries) {
	queries = q
}

type hoursPayload struct {
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

type hoursView struct {
	Weekday   int64  `json:"weekday"`
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

func viewOf(rule db.ClubHour) hoursView {
	return hoursView{
		Weekday:   rule.Weekday,
		IsOpen:    rule.IsOpen,
		OpenTime:  rule.OpenClock,
		CloseTime: rule.CloseClock,
	}
}

// GET /api/v1/club-hours
func HandleList(w http.ResponseWriter, r *http.Request) {
	if queries == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	rules, err := queries.ListClubHours(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	views := make([]hoursView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, viewOf(rule))
	}
	apiutil.WriteJSON(w, r, http.StatusOK, views)
}

// PUT /api/v1/club-hours/{weekday}
func HandleUpsert(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Club hours handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Weekday 0 (Monday) is a valid path id here, unlike row ids.
	weekday, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, pathPrefix), 10, 64)
	if err != nil || weekday < 0 || weekday > 6 {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "weekday must be 0 (Monday) through 6 (Sunday)")
		return
	}

	var payload hoursPayload
	if err := apiutil.DecodeJSON(r, &payload); err != nil {
		apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Closed days store zeroed clocks; open days store the canonical
	// Clock.String() form so "9:00" never reaches the table.
	openClock, closeClock := "00:00", "00:00"
	if payload.IsOpen {
		open, err := timeslot.ParseClock(payload.OpenTime)
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		close, err := timeslot.ParseClock(payload.CloseTime)
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		if close <= open {
			apiutil.WriteErrorMessage(w, r, http.StatusBadRequest, "close_time must be after open_time")
			return
		}
		openClock, closeClock = open.String(), close.String()
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	rule, err := queries.UpsertClubHours(ctx, db.UpsertClubHoursParams{
		Weekday:    weekday,
		IsOpen:     payload.IsOpen,
		OpenClock:  openClock,
		CloseClock: closeClock,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("weekday", weekday).Bool("is_open", rule.IsOpen).Msg("Club hours updated")
	apiutil.WriteJSON(w, r, http.StatusOK, viewOf(rule))
}
