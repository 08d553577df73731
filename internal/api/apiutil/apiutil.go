// Package apiutil holds the JSON plumbing shared by every handler package:
// response encoding, request decoding, and the mapping from service errors to
// HTTP status codes.
package apiutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/booking"
	"github.com/courtside/courtmatch/internal/hours"
	"github.com/courtside/courtmatch/internal/timeslot"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status. Encoding failures are logged;
// the status line has already been written by then.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError maps a service error onto an HTTP status and writes it as a JSON
// error body. Unrecognized errors become a 500 with a generic message so
// internals never leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		message = "internal server error"
	}
	WriteJSON(w, r, status, errorResponse{Error: message})
}

// WriteErrorMessage writes a fixed status and message, for cases the error
// mapping does not cover.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, errorResponse{Error: message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, booking.ErrPrecondition), errors.Is(err, booking.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrInvalidWindow),
		errors.Is(err, timeslot.ErrBadClock),
		errors.Is(err, hours.ErrBadDate),
		errors.Is(err, hours.ErrClosed),
		errors.Is(err, hours.ErrOutsideHours):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, ""
	}
}

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields and
// oversized payloads.
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// PathID extracts a positive integer id from the path segment following
// prefix. The prefix must include both slashes, e.g. "/api/v1/bookings/".
func PathID(r *http.Request, prefix string) (int64, error) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	// Drop a trailing action segment like "approve".
	if idx := strings.IndexByte(rest, '/'); idx != -1 {
		rest = rest[:idx]
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", rest)
	}
	return id, nil
}
