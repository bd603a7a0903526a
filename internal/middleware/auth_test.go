// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"gatehouse/internal/auth"
	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

// setupTestDB creates a test database with the tables session
// authentication touches.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// In-memory databases are per-connection, so the pool must be
	// pinned to a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			username TEXT NOT NULL REFERENCES users (username) ON DELETE CASCADE,
			last_active DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	return db
}

// simpleOKHandler returns an http.Handler that writes 200 OK.
var simpleOKHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// executeRequest creates a test request and executes it against the handler.
// Returns the response recorder.
func executeRequest(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// executeAuthRequest creates a test request with an auth header and executes it.
func executeAuthRequest(handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("Authorization", authHeader)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// insertTestSession creates an account and an open session for it,
// returning the session token.
func insertTestSession(t *testing.T, db *sql.DB, username string, isAdmin bool) string {
	t.Helper()

	queries := store.New(db)
	ctx := context.Background()

	_, err := queries.CreateUser(ctx, store.CreateUserParams{
		Username:     username,
		PasswordHash: "x",
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	_, err = queries.CreateSession(ctx, store.CreateSessionParams{
		Token:      token,
		Username:   username,
		LastActive: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return token
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{name: "missing header"},
		{name: "no scheme", header: "sometoken"},
		{name: "wrong scheme", header: "Basic sometoken"},
		{name: "empty token", header: "Bearer "},
		{name: "valid", header: "Bearer abc123", wantToken: "abc123", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc123", wantToken: "abc123", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, ok := BearerToken(req)
			if ok != tt.wantOK {
				t.Errorf("BearerToken() ok = %v, want %v", ok, tt.wantOK)
			}
			if token != tt.wantToken {
				t.Errorf("BearerToken() = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestRequireSession_MissingHeader(t *testing.T) {
	db := setupTestDB(t)

	handler := RequireSession(db)(simpleOKHandler)
	w := executeRequest(handler, http.MethodGet, "/api/test")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRequireSession_InvalidFormat(t *testing.T) {
	db := setupTestDB(t)

	handler := RequireSession(db)(simpleOKHandler)

	testCases := []string{
		"InvalidFormat",   // No "Bearer" prefix
		"Basic sometoken", // Wrong auth type
		"Bearer",          // Missing token
		"Bearer ",         // Empty token
	}

	for _, authHeader := range testCases {
		w := executeAuthRequest(handler, authHeader)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("auth header '%s': expected status %d, got %d", authHeader, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestRequireSession_UnknownToken(t *testing.T) {
	db := setupTestDB(t)

	handler := RequireSession(db)(simpleOKHandler)
	w := executeAuthRequest(handler, "Bearer token-that-does-not-exist")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRequireSession_ValidToken(t *testing.T) {
	db := setupTestDB(t)
	token := insertTestSession(t, db, "alice", false)

	var capturedUser *model.User
	var capturedSession *model.Session
	handler := RequireSession(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUser = GetUser(r)
		capturedSession = GetSession(r)
		w.WriteHeader(http.StatusOK)
	}))

	w := executeAuthRequest(handler, "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if capturedUser == nil {
		t.Fatal("expected user to be in context")
	}
	if capturedUser.Username != "alice" {
		t.Errorf("expected username 'alice', got %s", capturedUser.Username)
	}
	if capturedSession == nil {
		t.Fatal("expected session to be in context")
	}
	if capturedSession.Token != token {
		t.Errorf("expected session token %q, got %q", token, capturedSession.Token)
	}
}

func TestRequireSession_RefreshesRecency(t *testing.T) {
	db := setupTestDB(t)
	token := insertTestSession(t, db, "alice", false)

	// Backdate the session so the refresh is observable.
	_, err := db.Exec("UPDATE sessions SET last_active = ? WHERE token = ?",
		time.Now().Add(-time.Hour), token)
	if err != nil {
		t.Fatalf("failed to backdate session: %v", err)
	}

	handler := RequireSession(db)(simpleOKHandler)
	w := executeAuthRequest(handler, "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	sess, err := store.New(db).GetSessionByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if time.Since(sess.LastActive) > time.Minute {
		t.Errorf("expected last_active to be refreshed, got %v", sess.LastActive)
	}
}

func TestRequireAdmin_NoUser(t *testing.T) {
	handler := RequireAdmin()(simpleOKHandler)
	w := executeRequest(handler, http.MethodGet, "/api/test")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRequireAdmin_NonAdmin(t *testing.T) {
	handler := RequireAdmin()(simpleOKHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	ctx := context.WithValue(req.Context(), ContextKeyUser, model.User{Username: "alice"})
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestRequireAdmin_Admin(t *testing.T) {
	handler := RequireAdmin()(simpleOKHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	ctx := context.WithValue(req.Context(), ContextKeyUser, model.User{Username: "admin", IsAdmin: true})
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRequireSessionThenRequireAdmin(t *testing.T) {
	db := setupTestDB(t)
	token := insertTestSession(t, db, "root", true)

	handler := RequireSession(db)(RequireAdmin()(simpleOKHandler))
	w := executeAuthRequest(handler, "Bearer "+token)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestGetUser(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		user := GetUser(req)
		if user != nil {
			t.Errorf("GetUser() = %v, want nil", user)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		testUser := model.User{
			Username: "alice",
			IsAdmin:  true,
		}
		ctx := context.WithValue(req.Context(), ContextKeyUser, testUser)
		req = req.WithContext(ctx)

		user := GetUser(req)
		if user == nil {
			t.Fatal("GetUser() = nil, want user")
		}
		if user.Username != "alice" {
			t.Errorf("GetUser().Username = %q, want %q", user.Username, "alice")
		}
		if !user.IsAdmin {
			t.Error("GetUser().IsAdmin = false, want true")
		}
	})
}

func TestGetSession(t *testing.T) {
	t.Run("no session in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		sess := GetSession(req)
		if sess != nil {
			t.Errorf("GetSession() = %v, want nil", sess)
		}
	})

	t.Run("session in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		testSession := model.Session{
			Token:    "sometoken",
			Username: "alice",
		}
		ctx := context.WithValue(req.Context(), ContextKeySession, testSession)
		req = req.WithContext(ctx)

		sess := GetSession(req)
		if sess == nil {
			t.Fatal("GetSession() = nil, want session")
		}
		if sess.Token != "sometoken" {
			t.Errorf("GetSession().Token = %q, want %q", sess.Token, "sometoken")
		}
	})
}

func TestGetUsername(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		username := GetUsername(req)
		if username != "" {
			t.Errorf("GetUsername() = %q, want empty", username)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ContextKeyUser, model.User{Username: "bob"})
		req = req.WithContext(ctx)

		username := GetUsername(req)
		if username != "bob" {
			t.Errorf("GetUsername() = %q, want %q", username, "bob")
		}
	})
}
