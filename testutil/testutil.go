// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/society-live/auth"
	"github.com/danielhkuo/society-live/db"
	"github.com/danielhkuo/society-live/models"
)

// TestJWTSecret signs tokens issued by the helpers below
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a fresh SQLite database with the full schema.
// Each test gets its own file under t.TempDir().
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(context.Background(), db.TypeSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a db.Store with a silent logger
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t), DiscardLogger())
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestVerifier returns a verifier for tokens from MemberToken and AdminToken
func TestVerifier() *auth.Verifier {
	return auth.NewVerifier(TestJWTSecret, "")
}

// MemberToken issues a member identity token for userID
func MemberToken(t *testing.T, userID string) string {
	t.Helper()
	return issue(t, userID, models.RoleMember)
}

// AdminToken issues an admin identity token for userID
func AdminToken(t *testing.T, userID string) string {
	t.Helper()
	return issue(t, userID, models.RoleAdmin)
}

func issue(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := TestVerifier().Issue(userID, role, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// AuthHeader returns the Authorization header for a bearer token
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestEvent inserts an event and returns its ID
func CreateTestEvent(t *testing.T, store *db.Store) string {
	t.Helper()

	event := models.Event{
		ID:        uuid.NewString(),
		Title:     "Spring Showcase",
		Venue:     "Main Hall",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return event.ID
}

// CreateTestPerformance inserts a performance under eventID and returns its ID.
// Nil options fall back to yes/no. When enabled is true voting is opened now.
func CreateTestPerformance(t *testing.T, store *db.Store, eventID string, enabled bool, options []string, durationSeconds int) string {
	t.Helper()

	if options == nil {
		options = models.DefaultOptions
	}

	perf := models.Performance{
		ID:                    uuid.NewString(),
		EventID:               eventID,
		Title:                 "Opening Act",
		Performer:             "The Quartet",
		Options:               options,
		VotingDurationSeconds: durationSeconds,
		CreatedAt:             time.Now().UTC(),
	}
	if err := store.CreatePerformance(context.Background(), perf); err != nil {
		t.Fatalf("Failed to create test performance: %v", err)
	}

	if enabled {
		if _, err := store.SetVotingEnabled(context.Background(), perf.ID, true, time.Now().UTC()); err != nil {
			t.Fatalf("Failed to open voting: %v", err)
		}
	}

	return perf.ID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// DecodeData decodes a success envelope and its data into v
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) models.SuccessResponse {
	t.Helper()

	var env struct {
		models.SuccessResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("Failed to decode response data: %v", err)
		}
	}
	return env.SuccessResponse
}
