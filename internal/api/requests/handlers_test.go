package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtside/courtmatch/internal/booking"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/matching"
	"github.com/courtside/courtmatch/internal/testutil"
	"github.com/courtside/courtmatch/internal/timeslot"
)

// 2025-09-01 is a Monday, 2025-09-07 a Sunday.
const (
	openDay   = "2025-09-01"
	closedDay = "2025-09-07"
)

func setupHandlers(t *testing.T) (*booking.Service, *db.DB) {
	t.Helper()

	database := testutil.NewSeededTestDB(t)
	engine, err := matching.NewEngine(database, timeslot.DefaultStepMinutes)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	service, err := booking.NewService(database, engine, 0)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	InitHandlers(service, database.Queries)
	return service, database
}

func decodeView(t *testing.T, recorder *httptest.ResponseRecorder) requestView {
	t.Helper()
	var view requestView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return view
}

func TestHandleCreate(t *testing.T) {
	setupHandlers(t)

	body := `{"member_name":"Alice","level":3,"date":"` + openDay + `","start_time":"09:00","end_time":"12:00","duration_minutes":60}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body))
	HandleCreate(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	view := decodeView(t, recorder)
	if view.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if view.Status != db.RequestStatusOpen {
		t.Fatalf("status: %s", view.Status)
	}
	// Window is clamped to opening time.
	if view.StartClock != "10:00" || view.EndClock != "12:00" {
		t.Fatalf("window: [%s, %s)", view.StartClock, view.EndClock)
	}
}

func TestHandleCreate_DefaultDuration(t *testing.T) {
	setupHandlers(t)

	body := `{"member_name":"Alice","level":3,"date":"` + openDay + `","start_time":"10:00","end_time":"12:00"}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body))
	HandleCreate(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}
	if view := decodeView(t, recorder); view.DurationMinutes != booking.DefaultDurationMinutes {
		t.Fatalf("duration: %d", view.DurationMinutes)
	}
}

func TestHandleCreate_BadInput(t *testing.T) {
	setupHandlers(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed clock", `{"member_name":"Alice","level":3,"date":"` + openDay + `","start_time":"25:00","end_time":"12:00"}`},
		{"closed day", `{"member_name":"Alice","level":3,"date":"` + closedDay + `","start_time":"10:00","end_time":"12:00"}`},
		{"bad date", `{"member_name":"Alice","level":3,"date":"someday","start_time":"10:00","end_time":"12:00"}`},
		{"inverted window", `{"member_name":"Alice","level":3,"date":"` + openDay + `","start_time":"12:00","end_time":"10:00"}`},
		{"unknown field", `{"member_name":"Alice","level":3,"date":"` + openDay + `","start_time":"10:00","end_time":"12:00","surprise":1}`},
		{"not json", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(tt.body))
			HandleCreate(recorder, request)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleList(t *testing.T) {
	service, _ := setupHandlers(t)

	for _, name := range []string{"Alice", "Bruno"} {
		if _, err := service.CreateRequest(context.Background(), booking.RequestParams{
			MemberName:      name,
			Level:           3,
			Date:            openDay,
			StartClock:      "18:00",
			EndClock:        "20:00",
			DurationMinutes: 60,
		}); err != nil {
			t.Fatalf("create request: %v", err)
		}
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
	HandleList(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var views []requestView
	if err := json.NewDecoder(recorder.Body).Decode(&views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("open requests: %d", len(views))
	}

	// Unknown status filter.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/api/v1/requests?status=bogus", nil)
	HandleList(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandleUpdate_NotFound(t *testing.T) {
	setupHandlers(t)

	body := `{"member_name":"Alice","level":3,"date":"` + openDay + `","start_time":"10:00","end_time":"12:00"}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/v1/requests/999", strings.NewReader(body))
	HandleUpdate(recorder, request)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}
}

func TestHandleDelete(t *testing.T) {
	service, _ := setupHandlers(t)

	created, err := service.CreateRequest(context.Background(), booking.RequestParams{
		MemberName:      "Alice",
		Level:           3,
		Date:            openDay,
		StartClock:      "18:00",
		EndClock:        "20:00",
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/requests/%d", created.ID), nil)
	HandleDelete(recorder, request)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", recorder.Code, recorder.Body.String())
	}

	// Deleting again is a 404.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/requests/%d", created.ID), nil)
	HandleDelete(recorder, request)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}
}
