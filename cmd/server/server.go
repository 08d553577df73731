// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/courtside/courtmatch/internal/api"
	"github.com/courtside/courtmatch/internal/api/auth"
	"github.com/courtside/courtmatch/internal/api/bookings"
	"github.com/courtside/courtmatch/internal/api/calendar"
	"github.com/courtside/courtmatch/internal/api/clubhours"
	"github.com/courtside/courtmatch/internal/api/proposals"
	"github.com/courtside/courtmatch/internal/api/requests"
	"github.com/courtside/courtmatch/internal/booking"
	"github.com/courtside/courtmatch/internal/config"
	"github.com/courtside/courtmatch/internal/db"
	"github.com/courtside/courtmatch/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, service *booking.Service, sessions *auth.Store, loginLimiter *ratelimit.Limiter) *http.Server {
	requests.InitHandlers(service, database.Queries)
	proposals.InitHandlers(service, database.Queries)
	bookings.InitHandlers(service)
	calendar.InitHandlers(database.Queries)
	clubhours.InitHandlers(database.Queries)
	auth.InitHandlers(sessions, cfg.App.AdminPasswordHash, loginLimiter, cfg.App.Environment != "development")

	router := http.NewServeMux()
	registerRoutes(router, sessions)

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, sessions *auth.Store) {
	admin := api.WithAdminAuth(sessions)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)

	// Play requests: submission is open to members, the rest is admin-only.
	mux.HandleFunc("POST /api/v1/requests", requests.HandleCreate)
	mux.Handle("GET /api/v1/requests", admin(http.HandlerFunc(requests.HandleList)))
	mux.Handle("PUT /api/v1/requests/{id}", admin(http.HandlerFunc(requests.HandleUpdate)))
	mux.Handle("DELETE /api/v1/requests/{id}", admin(http.HandlerFunc(requests.HandleDelete)))

	// Match proposals
	mux.Handle("GET /api/v1/proposals", admin(http.HandlerFunc(proposals.HandleList)))
	mux.Handle("POST /api/v1/proposals/{id}/approve", admin(http.HandlerFunc(proposals.HandleApprove)))
	mux.Handle("POST /api/v1/proposals/{id}/reject", admin(http.HandlerFunc(proposals.HandleReject)))

	// Bookings
	mux.Handle("POST /api/v1/bookings", admin(http.HandlerFunc(bookings.HandleCreate)))
	mux.Handle("PUT /api/v1/bookings/{id}", admin(http.HandlerFunc(bookings.HandleUpdate)))
	mux.Handle("POST /api/v1/bookings/{id}/court", admin(http.HandlerFunc(bookings.HandleMoveCourt)))
	mux.Handle("DELETE /api/v1/bookings/{id}", admin(http.HandlerFunc(bookings.HandleDelete)))

	// Calendar and hours
	mux.HandleFunc("GET /api/v1/calendar", calendar.HandleCalendar)
	mux.HandleFunc("GET /api/v1/club-hours", clubhours.HandleList)
	mux.Handle("PUT /api/v1/club-hours/{weekday}", admin(http.HandlerFunc(clubhours.HandleUpsert)))
}
