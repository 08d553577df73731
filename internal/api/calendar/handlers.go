// internal/api/calendar/handlers.go
package calendar

import (
	"context"
	"net/http"
	"time"

	"github.com/courtside/courtmatch/internal/api/apiutil"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/hours"
)

const (
	queryTimeout = 5 * time.Second
	dateQueryKey = "date"
)

var queries *db.Queries

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries) {
	queries = q
}

type slotView struct {
	BookingID int64  `json:"booking_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	PlayerA   string `json:"player_a,omitempty"`
	PlayerB   string `json:"player_b,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type courtView struct {
	CourtID  int64      `json:"court_id"`
	Bookings []slotView `json:"bookings"`
}

type calendarView struct {
	Date      string      `json:"date"`
	IsOpen    bool        `json:"is_open"`
	OpenTime  string      `json:"open_time,omitempty"`
	CloseTime string      `json:"close_time,omitempty"`
	Courts    []courtView `json:"courts"`
}

// GET /api/v1/calendar?date=YYYY-MM-DD
func HandleCalendar(w http.ResponseWriter, r *http.Request) {
	if queries == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date := r.URL.Query().Get(dateQueryKey)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	resolver, err := hours.NewResolver(queries)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	open, close, isOpen, err := resolver.ForDate(ctx, date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	courts, err := queries.ListCourts(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	bookings, err := queries.ListConfirmedBookingsForDate(ctx, date)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	byCourt := make(map[int64][]slotView, len(courts))
	for _, booking := range bookings {
		byCourt[booking.CourtID] = append(byCourt[booking.CourtID], slotView{
			BookingID: booking.ID,
			StartTime: booking.StartClock,
			EndTime:   booking.EndClock,
			PlayerA:   booking.PlayerA.String,
			PlayerB:   booking.PlayerB.String,
			Notes:     booking.Notes.String,
		})
	}

	view := calendarView{
		Date:   date,
		IsOpen: isOpen,
		Courts: make([]courtView, 0, len(courts)),
	}
	if isOpen {
		view.OpenTime = open.String()
		view.CloseTime = close.String()
	}
	for _, court := range courts {
		slots := byCourt[court.ID]
		if slots == nil {
			slots = []slotView{}
		}
		view.Courts = append(view.Courts, courtView{CourtID: court.ID, Bookings: slots})
	}

	apiutil.WriteJSON(w, r, http.StatusOK, view)
}
