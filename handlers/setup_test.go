// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/society-live/auth"
	"github.com/danielhkuo/society-live/db"
	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/models"
	"github.com/danielhkuo/society-live/testutil"
)

// setupTest returns a SQLite-backed store and a hub over it. The hub is shut
// down when the test ends so no writer goroutine outlives it.
func setupTest(t *testing.T) (*db.Store, *hub.Hub) {
	t.Helper()

	store := testutil.SetupTestStore(t)
	votes := hub.New(store,
		hub.WithLogger(testutil.DiscardLogger()),
		hub.WithKeepAlive(0),
	)
	t.Cleanup(func() { votes.Shutdown(context.Background()) })
	return store, votes
}

// withUser attaches a member identity as RequireUser would
func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.NewContext(r.Context(), auth.Identity{UserID: userID, Role: models.RoleMember}))
}

// decodeError decodes an error envelope
func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Success {
		t.Error("Expected success=false")
	}
	if resp.StatusCode != w.Code {
		t.Errorf("Expected statusCode %d in body, got %d", w.Code, resp.StatusCode)
	}
	return resp
}

func assertErrorCode(t *testing.T, resp models.ErrorResponse, code string) {
	t.Helper()
	if len(resp.Errors) != 1 || resp.Errors[0] != code {
		t.Errorf("Expected errors [%s], got %v", code, resp.Errors)
	}
}
