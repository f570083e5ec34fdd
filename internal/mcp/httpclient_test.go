package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryHistory verifies the limit parameter and the array response.
func TestQueryHistory(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.LoggedWorkoutRow{{ID: uuid.New(), Name: "Push", SetCount: 6}})
		},
	})
	defer ts.Close()

	rows, err := NewHTTPClient(ts.URL+"/").QueryHistory(context.Background(), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Name != "Push" || rows[0].SetCount != 6 {
		t.Errorf("rows = %+v, want one Push row with 6 sets", rows)
	}
}

// TestGetLoggedWorkout verifies a 404 maps to ErrWorkoutNotFound.
func TestGetLoggedWorkout(t *testing.T) {
	found := uuid.New()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/history/"+found.String() {
			writeTestJSON(t, w, storage.LoggedWorkoutDetail{
				LoggedWorkoutRow: models.LoggedWorkoutRow{ID: found, Name: "Legs"},
				Sets:             []models.LoggedSetRow{{ExerciseName: "Squat", SetNumber: 1, Reps: "5"}},
			})
			return
		}
		http.Error(w, `{"error":"workout not found"}`, http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	d, err := client.GetLoggedWorkout(context.Background(), found, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Legs" || len(d.Sets) != 1 {
		t.Errorf("detail = %+v", d)
	}

	_, err = client.GetLoggedWorkout(context.Background(), uuid.New(), 1)
	if !errors.Is(err, storage.ErrWorkoutNotFound) {
		t.Errorf("err = %v, want ErrWorkoutNotFound", err)
	}
}

// TestHTTPClientServerError verifies non-200 responses surface as errors.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history/stats": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	if _, err := NewHTTPClient(ts.URL).GetHistoryStats(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
