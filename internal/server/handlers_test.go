package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/replog/internal/logging"
	"github.com/claude/replog/internal/metrics"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/settings"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/templates"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testKey = "test-key"

type recordingSubmitter struct {
	payloads []models.WorkoutPayload
	err      error
}

func (s *recordingSubmitter) Submit(_ context.Context, p models.WorkoutPayload) error {
	s.payloads = append(s.payloads, p)
	return s.err
}

type memUnits struct{ unit settings.WeightUnit }

func (m *memUnits) WeightUnit(context.Context) (settings.WeightUnit, error) { return m.unit, nil }
func (m *memUnits) SetWeightUnit(_ context.Context, u settings.WeightUnit) error {
	m.unit = u
	return nil
}
func (m *memUnits) WeightUnitLabel() string { return m.unit.Label() }

type fakeHistory struct {
	gotUserID int
	rows      []models.LoggedWorkoutRow
}

func (f *fakeHistory) QueryHistory(_ context.Context, userID, limit int) ([]models.LoggedWorkoutRow, error) {
	f.gotUserID = userID
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeHistory) GetLoggedWorkout(_ context.Context, id uuid.UUID, userID int) (*storage.LoggedWorkoutDetail, error) {
	for _, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			return &storage.LoggedWorkoutDetail{LoggedWorkoutRow: r}, nil
		}
	}
	return nil, storage.ErrWorkoutNotFound
}

func (f *fakeHistory) GetHistoryStats(_ context.Context, userID int) (*storage.HistoryStats, error) {
	return &storage.HistoryStats{TotalWorkouts: int64(len(f.rows))}, nil
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Sessions == nil {
		deps.Sessions = session.NewRegistry()
	}
	if deps.Catalog == nil {
		deps.Catalog = templates.NewCatalog(nil, logging.NewNop())
	}
	return New(deps, testKey, logging.NewNop())
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v (body %s)", err, rec.Body)
	}
	return resp
}

func startSession(t *testing.T, s *Server, typ string) uuid.UUID {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{"type": typ})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session status = %d, body %s", rec.Code, rec.Body)
	}
	return decodeSession(t, rec).ID
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the local user
// when no Tailscale identity is attached.
func TestHandleMeDefault(t *testing.T) {
	s := newTestServer(t, Deps{})
	rec := do(t, s, http.MethodGet, "/api/v1/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var u struct {
		ID    int    `json:"id"`
		Login string `json:"login"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if u.ID != 1 || u.Login != "local" {
		t.Errorf("me = %+v, want id 1 login local", u)
	}
}

// TestWorkoutTypesDefault verifies the built-in types when nothing is loaded.
func TestWorkoutTypesDefault(t *testing.T) {
	s := newTestServer(t, Deps{})
	rec := do(t, s, http.MethodGet, "/api/v1/workout-types", nil)
	var body struct {
		Types []string `json:"types"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(body.Types) != 3 || body.Types[0] != "Push" {
		t.Errorf("types = %v, want Push/Pull/Legs", body.Types)
	}
}

// TestComposeValidation verifies a blank title is rejected with flags and a
// valid form joins the workout types.
func TestComposeValidation(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s, http.MethodPost, "/api/v1/compose", composeRequest{Exercises: []string{"Squat", ""}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var rejected struct {
		Form session.FormView `json:"form"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&rejected); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !rejected.Form.Flags.TitleInvalid || !rejected.Form.Flags.ExerciseInvalid[2] || rejected.Form.Flags.ExerciseInvalid[1] {
		t.Errorf("flags = %+v, want title and exercise 2 flagged", rejected.Form.Flags)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/compose", composeRequest{Title: " Arms ", Exercises: []string{"Curl", "Dips"}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	id := startSession(t, s, "arms")
	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+id.String(), nil)
	got := decodeSession(t, rec)
	if got.Session.Title != "Arms" || len(got.Session.Exercises) != 2 {
		t.Errorf("session = %+v, want composed Arms workout", got.Session)
	}
}

// TestSessionSubmitFlow walks a session from start to a confirmed submit and
// checks the payload defaults blank fields to "0".
func TestSessionSubmitFlow(t *testing.T) {
	sub := &recordingSubmitter{}
	s := newTestServer(t, Deps{Submitter: sub})
	id := startSession(t, s, "")
	base := "/api/v1/sessions/" + id.String()

	rec := do(t, s, http.MethodPost, base+"/sets", setRequest{ExerciseID: 1})
	if got := decodeSession(t, rec); !got.Changed || len(got.Session.Exercises[0].Sets) != 2 {
		t.Fatalf("add set: %+v", got)
	}

	rec = do(t, s, http.MethodPatch, base+"/sets", setRequest{ExerciseID: 1, Index: 0, Field: "reps", Value: "10"})
	if got := decodeSession(t, rec); got.Session.Exercises[0].Sets[0].Reps != "10" {
		t.Fatalf("update set: %+v", got.Session.Exercises[0].Sets)
	}

	rec = do(t, s, http.MethodDelete, base+"/sets?exercise_id=1&index=1", nil)
	if got := decodeSession(t, rec); !got.Changed || len(got.Session.Exercises[0].Sets) != 1 {
		t.Fatalf("remove set: %+v", got)
	}

	rec = do(t, s, http.MethodDelete, base+"/sets?exercise_id=1&index=0", nil)
	if got := decodeSession(t, rec); got.Changed {
		t.Error("removing the only set must be a no-op")
	}

	rec = do(t, s, http.MethodPost, base+"/pending", map[string]any{"action": "submit_workout"})
	if got := decodeSession(t, rec); got.Session.Pending.Kind != session.ActionSubmitWorkout {
		t.Fatalf("pending = %v", got.Session.Pending)
	}
	if len(sub.payloads) != 0 {
		t.Fatal("nothing may be submitted before confirmation")
	}

	rec = do(t, s, http.MethodPost, base+"/pending/confirm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", rec.Code, rec.Body)
	}
	got := decodeSession(t, rec)
	if got.Payload == nil || len(sub.payloads) != 1 {
		t.Fatalf("payload = %v, submitted %d", got.Payload, len(sub.payloads))
	}
	first := sub.payloads[0].Exercises[0].Sets[0]
	if first.Reps != "10" || first.Weight != "0" {
		t.Errorf("first set = %+v, want reps 10 weight 0", first)
	}

	rec = do(t, s, http.MethodPost, base+"/pending/confirm", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second confirm status = %d, want 409", rec.Code)
	}
}

// TestDeleteExerciseNeedsConfirmation verifies a delete request changes
// nothing until confirmed and cancel drops it.
func TestDeleteExerciseNeedsConfirmation(t *testing.T) {
	s := newTestServer(t, Deps{})
	id := startSession(t, s, "")
	base := "/api/v1/sessions/" + id.String()

	do(t, s, http.MethodPost, base+"/pending", map[string]any{"action": "delete_exercise", "index": 0})
	do(t, s, http.MethodPost, base+"/pending/cancel", nil)
	rec := do(t, s, http.MethodPost, base+"/pending/confirm", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("confirm after cancel status = %d, want 409", rec.Code)
	}

	do(t, s, http.MethodPost, base+"/pending", map[string]any{"action": "delete_exercise", "index": 0})
	rec = do(t, s, http.MethodPost, base+"/pending", map[string]any{"action": "submit_workout"})
	if got := decodeSession(t, rec); got.Changed || got.Session.Pending.Kind != session.ActionDeleteExercise {
		t.Fatalf("submit during pending delete: changed=%v pending=%v", got.Changed, got.Session.Pending)
	}

	rec = do(t, s, http.MethodPost, base+"/pending/confirm", nil)
	got := decodeSession(t, rec)
	if len(got.Session.Exercises) != 1 || got.Session.Exercises[0].ID != 1 || got.Session.Exercises[0].Name != "Shoulder Press" {
		t.Errorf("exercises = %+v, want renumbered Shoulder Press", got.Session.Exercises)
	}
}

// TestAddExercisesRejectsBlank verifies a batch with a blank name changes
// nothing.
func TestAddExercisesRejectsBlank(t *testing.T) {
	s := newTestServer(t, Deps{})
	id := startSession(t, s, "")
	base := "/api/v1/sessions/" + id.String()

	rec := do(t, s, http.MethodPost, base+"/exercises", map[string]any{"names": []string{"Dips", " "}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	rec = do(t, s, http.MethodPost, base+"/exercises", map[string]any{"names": []string{"Dips", "Flyes"}})
	got := decodeSession(t, rec)
	if len(got.Session.Exercises) != 4 || got.Session.Exercises[3].ID != 4 {
		t.Errorf("exercises = %+v, want 4", got.Session.Exercises)
	}
}

// TestSetGesture verifies a swipe released past the threshold arms the row.
func TestSetGesture(t *testing.T) {
	s := newTestServer(t, Deps{})
	id := startSession(t, s, "")
	base := "/api/v1/sessions/" + id.String() + "/sets/gesture"

	do(t, s, http.MethodPost, base, gestureRequest{ExerciseID: 1, Kind: "release", Translation: 60})
	rec := do(t, s, http.MethodPost, base, gestureRequest{ExerciseID: 1, Kind: "advance", DTMillis: 1000})

	raw := rec.Body.Bytes()
	if !bytes.Contains(raw, []byte(`"phase":"armed_right"`)) {
		t.Errorf("body = %s, want armed_right row", raw)
	}

	rec = do(t, s, http.MethodPost, base, gestureRequest{ExerciseID: 1, Kind: "wiggle"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	s := newTestServer(t, Deps{})
	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"bad id", http.MethodGet, "/api/v1/sessions/nope", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/sessions/" + uuid.NewString(), http.StatusNotFound},
		{"end unknown", http.MethodDelete, "/api/v1/sessions/" + uuid.NewString(), http.StatusNotFound},
		{"remove set without params", http.MethodDelete, "/api/v1/sessions/" + uuid.NewString() + "/sets", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestEndSessionMetrics verifies ending a session updates the gauge without
// counting another start.
func TestEndSessionMetrics(t *testing.T) {
	rec := metrics.New(prometheus.NewRegistry())
	s := newTestServer(t, Deps{Metrics: rec})

	id := startSession(t, s, "Push")
	if resp := do(t, s, http.MethodDelete, "/api/v1/sessions/"+id.String(), nil); resp.Code != http.StatusNoContent {
		t.Fatalf("end status = %d, want 204", resp.Code)
	}

	if got := testutil.ToFloat64(rec.SessionsStarted); got != 1 {
		t.Errorf("sessions started = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.ActiveSessionsGauge); got != 0 {
		t.Errorf("active sessions = %v, want 0", got)
	}
}

// TestUnitSettings verifies the unit label flows into new sessions.
func TestUnitSettings(t *testing.T) {
	units := &memUnits{unit: settings.Pounds}
	s := newTestServer(t, Deps{Units: units})

	rec := do(t, s, http.MethodPut, "/api/v1/settings/unit", map[string]string{"unit": "kg"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPut, "/api/v1/settings/unit", map[string]string{"unit": "stone"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad unit status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/sessions", map[string]string{})
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"weight_label":"Kg"`)) {
		t.Errorf("body = %s, want Kg label", rec.Body)
	}
}

func TestUnitWithoutStore(t *testing.T) {
	s := newTestServer(t, Deps{})
	rec := do(t, s, http.MethodGet, "/api/v1/settings/unit", nil)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"label":"Lbs"`)) {
		t.Errorf("body = %s, want Lbs", rec.Body)
	}
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, Deps{})
	if rec := do(t, s, http.MethodGet, "/api/v1/history", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status without store = %d, want 404", rec.Code)
	}

	wid := uuid.New()
	hist := &fakeHistory{rows: []models.LoggedWorkoutRow{{ID: wid, UserID: 1, Name: "Push"}, {ID: uuid.New(), UserID: 1, Name: "Pull"}}}
	s = newTestServer(t, Deps{History: hist})

	rec := do(t, s, http.MethodGet, "/api/v1/history?limit=1", nil)
	var rows []models.LoggedWorkoutRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rows) != 1 || hist.gotUserID != 1 {
		t.Errorf("rows = %d user = %d, want 1 row for user 1", len(rows), hist.gotUserID)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/history/"+wid.String(), nil); rec.Code != http.StatusOK {
		t.Errorf("detail status = %d, want 200", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/history/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing detail status = %d, want 404", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/history/stats", nil); rec.Code != http.StatusOK {
		t.Errorf("stats status = %d, want 200", rec.Code)
	}
}
