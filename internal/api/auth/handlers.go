package auth

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/ratelimit"
)

var (
	sessions     *Store
	passwordHash string
	limiter      *ratelimit.Limiter
	trustProxy   bool
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(store *Store, adminPasswordHash string, loginLimiter *ratelimit.Limiter, behindProxy bool) {
	sessions = store
	passwordHash = adminPasswordHash
	limiter = loginLimiter
	trustProxy = behindProxy
}

type loginRequest struct {
	Password string `json:"password"`
}

// POST /api/v1/auth/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if sessions == nil || passwordHash == "" {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin(ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(ip, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
	}

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !VerifyPassword(passwordHash, req.Password) {
		if limiter != nil {
			if lockedOut := limiter.RecordFailure(ip); lockedOut {
				logger.Warn().Str("ip", ip).Msg("Login lockout triggered")
			}
		}
		http.Error(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	if limiter != nil {
		limiter.ResetAttempts(ip)
	}
	if err := sessions.CreateSession(w); err != nil {
		logger.Error().Err(err).Msg("Failed to create admin session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logger.Info().Msg("Admin logged in")
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/auth/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessions == nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	sessions.ClearSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}
