package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("club-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "club-secret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "club-secret") {
		t.Fatal("correct password must verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password must not verify")
	}
	if VerifyPassword("not-a-hash", "club-secret") {
		t.Fatal("malformed hash must not verify")
	}
}

func sessionCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	store := NewStore(false)

	recorder := httptest.NewRecorder()
	if err := store.CreateSession(recorder); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(t, recorder)
	if cookie.Value == "" {
		t.Fatal("session token is empty")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(cookie)
	if !store.Authenticated(request) {
		t.Fatal("request with session cookie must authenticate")
	}

	// Logout invalidates the token even if the client keeps the cookie.
	store.ClearSession(httptest.NewRecorder(), request)
	if store.Authenticated(request) {
		t.Fatal("cleared session must not authenticate")
	}
}

func TestAuthenticated_RejectsUnknownToken(t *testing.T) {
	store := NewStore(false)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if store.Authenticated(request) {
		t.Fatal("request without cookie must not authenticate")
	}

	request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged-token"})
	if store.Authenticated(request) {
		t.Fatal("forged token must not authenticate")
	}
}

func TestHandleLogin(t *testing.T) {
	hash, err := HashPassword("club-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := NewStore(false)
	InitHandlers(store, hash, nil, false)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"club-secret"}`))
	HandleLogin(recorder, request)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
	}
	cookie := sessionCookie(t, recorder)

	authed := httptest.NewRequest(http.MethodGet, "/", nil)
	authed.AddCookie(cookie)
	if !store.Authenticated(authed) {
		t.Fatal("login must create a live session")
	}

	// Wrong password.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"nope"}`))
	HandleLogin(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}

	// Garbage body.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("not json"))
	HandleLogin(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestHandleLogout(t *testing.T) {
	hash, err := HashPassword("club-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := NewStore(false)
	InitHandlers(store, hash, nil, false)

	recorder := httptest.NewRecorder()
	if err := store.CreateSession(recorder); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(t, recorder)

	logout := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	request.AddCookie(cookie)
	HandleLogout(logout, request)
	if logout.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", logout.Code, http.StatusNoContent)
	}

	check := httptest.NewRequest(http.MethodGet, "/", nil)
	check.AddCookie(cookie)
	if store.Authenticated(check) {
		t.Fatal("session must be dead after logout")
	}
}
