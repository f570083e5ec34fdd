package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type sessionResponse struct {
	ID      uuid.UUID              `json:"id"`
	Changed bool                   `json:"changed"`
	Session session.EditorView     `json:"session"`
	Payload *models.WorkoutPayload `json:"payload,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	workout := s.deps.Catalog.Workout(req.Type)
	ed := session.NewEditor(workout, s.editorOptions()...)
	id := s.deps.Sessions.Add(ed)
	s.deps.Metrics.SessionStarted(s.deps.Sessions.Len())
	s.log.Info("session started", "id", id, "workout", workout.Title)

	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Changed: true, Session: ed.View()})
}

func (s *Server) editorOptions() []session.Option {
	opts := []session.Option{session.WithLogger(s.log)}
	if s.deps.Submitter != nil {
		opts = append(opts, session.WithSubmitter(s.deps.Submitter))
	}
	if s.deps.Units != nil {
		opts = append(opts, session.WithUnits(s.deps.Units))
	}
	return opts
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(*session.Editor) bool { return false })
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	if !s.deps.Sessions.Remove(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": session.ErrSessionNotFound.Error()})
		return
	}
	s.deps.Metrics.SessionEnded(s.deps.Sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

type setRequest struct {
	ExerciseID int    `json:"exercise_id"`
	Index      int    `json:"index"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, r, func(ed *session.Editor) bool {
		if !ed.AddSet(req.ExerciseID) {
			return false
		}
		s.deps.Metrics.SetAdded()
		return true
	})
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !decode(w, r, &req) {
		return
	}
	field, err := session.ParseField(req.Field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.mutate(w, r, func(ed *session.Editor) bool {
		return ed.UpdateSet(req.ExerciseID, req.Index, field, req.Value)
	})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, err1 := strconv.Atoi(r.URL.Query().Get("exercise_id"))
	index, err2 := strconv.Atoi(r.URL.Query().Get("index"))
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id and index query parameters required"})
		return
	}
	s.mutate(w, r, func(ed *session.Editor) bool {
		return ed.RemoveSet(exerciseID, index)
	})
}

type gestureRequest struct {
	ExerciseID  int     `json:"exercise_id"`
	Index       int     `json:"index"`
	Kind        string  `json:"kind"`
	Translation float64 `json:"translation"`
	DTMillis    int     `json:"dt_ms"`
}

// handleSetGesture feeds one drag event to a set row. Row state is part of
// the returned session view.
func (s *Server) handleSetGesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if !decode(w, r, &req) {
		return
	}
	var apply func(*session.DragRow[uint64]) bool
	switch req.Kind {
	case "begin":
		apply = func(row *session.DragRow[uint64]) bool { row.BeginDrag(); return true }
	case "drag":
		apply = func(row *session.DragRow[uint64]) bool { row.DragTo(req.Translation); return true }
	case "release":
		apply = func(row *session.DragRow[uint64]) bool { row.Release(req.Translation); return true }
	case "close":
		apply = func(row *session.DragRow[uint64]) bool { row.Close(); return true }
	case "delete":
		apply = func(row *session.DragRow[uint64]) bool { return row.Delete() }
	case "advance":
		dt := time.Duration(req.DTMillis) * time.Millisecond
		apply = func(row *session.DragRow[uint64]) bool { row.Advance(dt); return true }
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown gesture kind " + strconv.Quote(req.Kind)})
		return
	}

	s.mutate(w, r, func(ed *session.Editor) bool {
		row := ed.SetRow(req.ExerciseID, req.Index)
		if row == nil {
			return false
		}
		return apply(row)
	})
}

// handleAddExercises runs the names through the session's add-exercise form:
// a blank name rejects the whole batch, no names at all is a no-op.
func (s *Server) handleAddExercises(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if !decode(w, r, &req) {
		return
	}

	var rejected *session.FormView
	resp, ok := s.apply(w, r, func(ed *session.Editor) bool {
		form := ed.AddForm()
		form.Fill("", req.Names)
		added, ok := ed.CommitAddForm()
		if !ok {
			v := form.View()
			rejected = &v
			ed.CloseAddForm()
			return false
		}
		return added > 0
	})
	if !ok {
		return
	}
	if rejected != nil {
		s.deps.Metrics.Rejected("add_exercises")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "form": rejected})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequestPending(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		Index  int    `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	var kind session.ActionKind
	switch req.Action {
	case session.ActionDeleteExercise.String():
		kind = session.ActionDeleteExercise
	case session.ActionSubmitWorkout.String():
		kind = session.ActionSubmitWorkout
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action " + strconv.Quote(req.Action)})
		return
	}

	s.mutate(w, r, func(ed *session.Editor) bool {
		if kind == session.ActionDeleteExercise {
			return ed.RequestDeleteExercise(req.Index)
		}
		return ed.RequestSubmit()
	})
}

func (s *Server) handleConfirmPending(w http.ResponseWriter, r *http.Request) {
	var (
		nothing   bool
		submitErr error
		payload   *models.WorkoutPayload
	)
	resp, ok := s.apply(w, r, func(ed *session.Editor) bool {
		switch ed.Pending().Kind {
		case session.ActionDeleteExercise:
			return ed.ConfirmDelete()
		case session.ActionSubmitWorkout:
			p, _, err := ed.ConfirmSubmit(r.Context())
			s.deps.Metrics.Submitted(err)
			payload, submitErr = &p, err
			return true
		default:
			nothing = true
			return false
		}
	})
	if !ok {
		return
	}

	switch {
	case nothing:
		writeJSON(w, http.StatusConflict, map[string]string{"error": session.ErrNothingPending.Error()})
	case submitErr != nil:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "submitting workout: " + submitErr.Error()})
	default:
		resp.Payload = payload
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleCancelPending(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ed *session.Editor) bool {
		awaiting := ed.Pending().Awaiting()
		ed.Cancel()
		return awaiting
	})
}

// mutate applies fn and writes the resulting session.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*session.Editor) bool) {
	if resp, ok := s.apply(w, r, fn); ok {
		writeJSON(w, http.StatusOK, resp)
	}
}

// apply runs fn on the session named in the URL while holding its lock. On
// failure the error response is already written and ok is false.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn func(*session.Editor) bool) (sessionResponse, bool) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return sessionResponse{}, false
	}

	resp := sessionResponse{ID: id}
	err := s.deps.Sessions.Do(id, func(ed *session.Editor) error {
		resp.Changed = fn(ed)
		resp.Session = ed.View()
		return nil
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return sessionResponse{}, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return sessionResponse{}, false
	}
	return resp, true
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}
