// Package auth implements the admin login surface: bcrypt password checks and
// in-memory session tokens carried in an HttpOnly cookie.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

const (
	sessionCookieName      = "courtmatch_session"
	sessionTTL             = 8 * time.Hour
	sessionTokenBytes      = 32
	sessionCleanupInterval = 15 * time.Minute
)

// Store holds admin sessions in memory. Sessions are intentionally ephemeral:
// a restart logs every admin out, which is acceptable for a single-club
// deployment.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]time.Time
	secureCookie bool
	cleanupOnce  sync.Once
}

func NewStore(secureCookie bool) *Store {
	return &Store{
		sessions:     make(map[string]time.Time),
		secureCookie: secureCookie,
	}
}

// CreateSession mints a session token and sets the session cookie.
func (s *Store) CreateSession(w http.ResponseWriter) error {
	if w == nil {
		return errors.New("session requires response writer")
	}

	s.startCleanup()

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(sessionTTL)
	s.mu.Lock()
	s.sessions[token] = expiresAt
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

// ClearSession deletes the request's session, if any, and expires the cookie.
func (s *Store) ClearSession(w http.ResponseWriter, r *http.Request) {
	if r != nil {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			s.mu.Lock()
			delete(s.sessions, cookie.Value)
			s.mu.Unlock()
		}
	}

	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// Authenticated reports whether the request carries a live session token.
func (s *Store) Authenticated(r *http.Request) bool {
	if r == nil {
		return false
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}

	s.mu.RLock()
	expiresAt, ok := s.sessions[cookie.Value]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if expiresAt.Before(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
		return false
	}
	return true
}

func (s *Store) startCleanup() {
	s.cleanupOnce.Do(func() {
		// Lazy-start cleanup only when sessions are first used.
		go func() {
			ticker := time.NewTicker(sessionCleanupInterval)
			defer ticker.Stop()
			for range ticker.C {
				s.pruneExpired()
			}
		}()
	})
}

func (s *Store) pruneExpired() {
	now := time.Now()
	s.mu.Lock()
	for token, expiresAt := range s.sessions {
		if expiresAt.Before(now) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}
