// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestHealthHandler creates a health handler backed by a fresh test
// database.
func newTestHealthHandler(t *testing.T) (*sql.DB, *HealthHandler) {
	t.Helper()
	db := testDB(t)
	return db, NewHealthHandler(db, "1.0.0")
}

// addBearerAuth adds a session token to the request for authenticated
// health checks.
func addBearerAuth(r *http.Request, token string) {
	r.Header.Set("Authorization", "Bearer "+token)
}

func TestHealthHandler_Health_Public(t *testing.T) {
	_, handler := newTestHealthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assertStatusCode(t, w, http.StatusOK)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}

	// Public response should be minimal
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("status = %v; want healthy", resp["status"])
	}

	// Should NOT contain detailed fields
	if _, ok := resp["uptime"]; ok {
		t.Error("public response should not contain uptime")
	}
	if _, ok := resp["version"]; ok {
		t.Error("public response should not contain version")
	}
	if _, ok := resp["checks"]; ok {
		t.Error("public response should not contain checks")
	}
	if _, ok := resp["stats"]; ok {
		t.Error("public response should not contain stats")
	}
}

func TestHealthHandler_Health_Public_Verbose(t *testing.T) {
	_, handler := newTestHealthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	// Public response should still be minimal even with verbose=true
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if _, ok := resp["system"]; ok {
		t.Error("public response should not contain system info even with verbose=true")
	}
}

func TestHealthHandler_Health_Authenticated(t *testing.T) {
	db, handler := newTestHealthHandler(t)
	createTestUser(t, db, "alice", "", false)
	token := createTestSession(t, db, "alice")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	addBearerAuth(req, token)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assertStatusCode(t, w, http.StatusOK)

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("status = %q; want healthy", resp.Status)
	}
	if resp.Uptime == "" {
		t.Error("authenticated response should contain uptime")
	}
	if resp.Version != "1.0.0" {
		t.Errorf("version = %q; want 1.0.0", resp.Version)
	}

	// Check details and stats are admin-only
	if resp.Checks != nil {
		t.Error("non-admin response should not contain checks")
	}
	if resp.Stats != nil {
		t.Error("non-admin response should not contain stats")
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	db, handler := newTestHealthHandler(t)
	createTestUser(t, db, "admin", "", true)
	token := createTestSession(t, db, "admin")

	createTestUser(t, db, "alice", "", false)
	createTestInvite(t, db, "ab12cd", time.Now().Add(24*time.Hour))

	t.Run("full details without verbose", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		addBearerAuth(req, token)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		assertStatusCode(t, w, http.StatusOK)

		var resp HealthStatus
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		dbCheck, ok := resp.Checks["database"]
		if !ok {
			t.Fatal("admin response should contain the database check")
		}
		if dbCheck.Status != "healthy" {
			t.Errorf("database check = %q; want healthy", dbCheck.Status)
		}

		if resp.Stats == nil {
			t.Fatal("admin response should contain store stats")
		}
		if resp.Stats.Users != 2 {
			t.Errorf("stats.users = %d; want 2", resp.Stats.Users)
		}
		if resp.Stats.Sessions != 1 {
			t.Errorf("stats.sessions = %d; want 1", resp.Stats.Sessions)
		}
		if resp.Stats.Invites != 1 {
			t.Errorf("stats.invites = %d; want 1", resp.Stats.Invites)
		}

		if resp.System != nil {
			t.Error("system info should require verbose=true")
		}
	})

	t.Run("system info with verbose", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
		addBearerAuth(req, token)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		var resp HealthStatus
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if resp.System == nil {
			t.Fatal("expected system info with verbose=true")
		}
		if resp.System.GoVersion == "" {
			t.Error("expected a Go version in system info")
		}
		if resp.System.NumCPU <= 0 {
			t.Error("expected a positive CPU count")
		}
	})
}

func TestHealthHandler_Health_UnhealthyDatabase_Public(t *testing.T) {
	db, handler := newTestHealthHandler(t)

	_ = db.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assertStatusCode(t, w, http.StatusServiceUnavailable)

	// Public response should be minimal even when degraded
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp["status"] != "degraded" {
		t.Errorf("status = %v; want degraded", resp["status"])
	}

	// Should NOT expose check details
	if _, ok := resp["checks"]; ok {
		t.Error("public degraded response should not contain checks")
	}
}

func TestHealthHandler_Health_UnhealthyDatabase_Authenticated(t *testing.T) {
	db, handler := newTestHealthHandler(t)
	createTestUser(t, db, "alice", "", false)
	token := createTestSession(t, db, "alice")

	// Close DB after opening the session
	_ = db.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	addBearerAuth(req, token)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assertStatusCode(t, w, http.StatusServiceUnavailable)

	// Session validation needs the database, so callers can't prove
	// who they are while it is down and get the public response.
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp["status"] != "degraded" {
		t.Errorf("status = %v; want degraded", resp["status"])
	}
}

// testHealthProbe tests a health probe endpoint for expected status response.
func testHealthProbe(t *testing.T, path string, handlerFn func(http.ResponseWriter, *http.Request), expectedStatus string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()

	handlerFn(w, req)

	assertStatusCode(t, w, http.StatusOK)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp["status"] != expectedStatus {
		t.Errorf("status = %q; want %s", resp["status"], expectedStatus)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	_, handler := newTestHealthHandler(t)
	testHealthProbe(t, "/health/live", handler.Liveness, "alive")
}

func TestHealthHandler_Readiness(t *testing.T) {
	_, handler := newTestHealthHandler(t)
	testHealthProbe(t, "/health/ready", handler.Readiness, "ready")
}

func TestHealthHandler_Readiness_NotReady_Public(t *testing.T) {
	db, handler := newTestHealthHandler(t)

	_ = db.Close()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	assertStatusCode(t, w, http.StatusServiceUnavailable)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp["status"] != "not_ready" {
		t.Errorf("status = %q; want not_ready", resp["status"])
	}

	// Public response should NOT contain error message
	if _, ok := resp["message"]; ok {
		t.Error("public not_ready response should not contain error message")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q; want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestHealthHandler_StartTime(t *testing.T) {
	_, handler := newTestHealthHandler(t)

	if handler.StartTime().IsZero() {
		t.Error("expected a start time")
	}
	if time.Since(handler.StartTime()) > time.Minute {
		t.Errorf("start time too old: %v", handler.StartTime())
	}
}
