package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// sessionResult is the JSON body returned by every session tool.
type sessionResult struct {
	ID      uuid.UUID              `json:"id"`
	Changed bool                   `json:"changed"`
	Session session.EditorView     `json:"session"`
	Payload *models.WorkoutPayload `json:"payload,omitempty"`
}

// --- Tool definitions ---

var toolListWorkoutTypes = mcp.NewTool("list_workout_types",
	mcp.WithDescription("List the workout types a session can be started from, with each template's exercises."),
)

var toolComposeWorkout = mcp.NewTool("compose_workout",
	mcp.WithDescription("Create a custom workout type. The title and every exercise name must be non-blank; on failure the form with its invalid fields is returned."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Workout title")),
	mcp.WithArray("exercises", mcp.Required(), mcp.WithStringItems(), mcp.Description("Exercise names in order")),
)

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a logging session for a workout type. Each exercise starts with one blank set. Unknown or empty types fall back to the default workout."),
	mcp.WithString("type", mcp.Description("Workout type name (see list_workout_types)")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get the current state of a session: exercises, sets, weight unit and any pending confirmation."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session")),
)

var toolAddSet = mcp.NewTool("add_set",
	mcp.WithDescription("Append a blank set to an exercise."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID (1-based)")),
)

var toolUpdateSet = mcp.NewTool("update_set",
	mcp.WithDescription("Set the reps or weight text of one set. Values are stored as typed."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID (1-based)")),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Set index within the exercise (0-based)")),
	mcp.WithString("field", mcp.Required(), mcp.Description("Field to set"), mcp.Enum("reps", "weight")),
	mcp.WithString("value", mcp.Required(), mcp.Description("New text value")),
)

var toolRemoveSet = mcp.NewTool("remove_set",
	mcp.WithDescription("Remove one set. The only set of an exercise cannot be removed."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID (1-based)")),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Set index within the exercise (0-based)")),
)

var toolAddExercises = mcp.NewTool("add_exercises",
	mcp.WithDescription("Append exercises to a session, each with one blank set. Any blank name rejects the whole batch."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithArray("names", mcp.Required(), mcp.WithStringItems(), mcp.Description("Exercise names")),
)

var toolRequestDeleteExercise = mcp.NewTool("request_delete_exercise",
	mcp.WithDescription("Ask to delete an exercise and its sets. Nothing changes until confirm_pending."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Exercise position (0-based)")),
)

var toolRequestSubmit = mcp.NewTool("request_submit",
	mcp.WithDescription("Ask to submit the workout. Nothing is sent until confirm_pending."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
)

var toolConfirmPending = mcp.NewTool("confirm_pending",
	mcp.WithDescription("Confirm the pending delete or submit. A confirmed submit returns the payload that was sent; blank reps and weight are sent as \"0\"."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
)

var toolCancelPending = mcp.NewTool("cancel_pending",
	mcp.WithDescription("Dismiss the pending delete or submit without changing the session."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("List submitted workouts, newest first. Pass workout_id to get one workout with all its sets."),
	mcp.WithString("workout_id", mcp.Description("Submitted workout ID for the detail view")),
	mcp.WithNumber("limit", mcp.Description("Max workouts to return. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) listWorkoutTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(map[string]any{
		"types":     h.deps.Catalog.Types(),
		"templates": h.deps.Catalog.Templates(),
	})
}

func (h *handlers) composeWorkout(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	names := req.GetStringSlice("exercises", nil)

	c := session.NewComposer()
	c.Fill(title, names)
	workout, ok := c.Submit()
	if !ok {
		h.deps.Metrics.Rejected("compose")
		return jsonError("validation failed", map[string]any{"form": c.View()})
	}

	h.deps.Catalog.AddComposed(workout)
	h.deps.Metrics.Composed()
	h.log.Info("workout composed", "title", workout.Title, "exercises", len(workout.Exercises))
	return mcp.NewToolResultJSON(workout)
}

func (h *handlers) startSession(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workout := h.deps.Catalog.Workout(req.GetString("type", ""))
	ed := session.NewEditor(workout, h.editorOptions()...)
	id := h.deps.Sessions.Add(ed)
	h.deps.Metrics.SessionStarted(h.deps.Sessions.Len())
	h.log.Info("session started", "id", id, "workout", workout.Title, "via", "mcp")

	return mcp.NewToolResultJSON(sessionResult{ID: id, Changed: true, Session: ed.View()})
}

func (h *handlers) getSession(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withSession(req, func(*session.Editor) bool { return false })
}

func (h *handlers) addSet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.withSession(req, func(ed *session.Editor) bool {
		if !ed.AddSet(exerciseID) {
			return false
		}
		h.deps.Metrics.SetAdded()
		return true
	})
}

func (h *handlers) updateSet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fieldName, err := req.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := session.ParseField(fieldName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value := req.GetString("value", "")

	return h.withSession(req, func(ed *session.Editor) bool {
		return ed.UpdateSet(exerciseID, index, field, value)
	})
}

func (h *handlers) removeSet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.withSession(req, func(ed *session.Editor) bool {
		return ed.RemoveSet(exerciseID, index)
	})
}

func (h *handlers) addExercises(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := req.GetStringSlice("names", nil)

	var rejected *session.FormView
	result, err := h.withSession(req, func(ed *session.Editor) bool {
		form := ed.AddForm()
		form.Fill("", names)
		added, ok := ed.CommitAddForm()
		if !ok {
			v := form.View()
			rejected = &v
			ed.CloseAddForm()
			return false
		}
		return added > 0
	})
	if rejected != nil {
		h.deps.Metrics.Rejected("add_exercises")
		return jsonError("validation failed", map[string]any{"form": rejected})
	}
	return result, err
}

func (h *handlers) requestDeleteExercise(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.withSession(req, func(ed *session.Editor) bool {
		return ed.RequestDeleteExercise(index)
	})
}

func (h *handlers) requestSubmit(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withSession(req, func(ed *session.Editor) bool {
		return ed.RequestSubmit()
	})
}

func (h *handlers) confirmPending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		nothing   bool
		submitErr error
		payload   *models.WorkoutPayload
	)
	result, err := h.withSession(req, func(ed *session.Editor) bool {
		switch ed.Pending().Kind {
		case session.ActionDeleteExercise:
			return ed.ConfirmDelete()
		case session.ActionSubmitWorkout:
			p, _, err := ed.ConfirmSubmit(ctx)
			h.deps.Metrics.Submitted(err)
			payload, submitErr = &p, err
			return true
		default:
			nothing = true
			return false
		}
	}, func(r *sessionResult) { r.Payload = payload })

	switch {
	case nothing:
		return mcp.NewToolResultError(session.ErrNothingPending.Error()), nil
	case submitErr != nil:
		return mcp.NewToolResultError("submitting workout: " + submitErr.Error()), nil
	}
	return result, err
}

func (h *handlers) cancelPending(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.withSession(req, func(ed *session.Editor) bool {
		awaiting := ed.Pending().Awaiting()
		ed.Cancel()
		return awaiting
	})
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := h.user(ctx).ID

	if raw := req.GetString("workout_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid workout_id: " + err.Error()), nil
		}
		detail, err := h.deps.History.GetLoggedWorkout(ctx, id, uid)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultJSON(detail)
	}

	rows, err := h.deps.History.QueryHistory(ctx, uid, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultJSON(rows)
}

// withSession runs fn on the named session under its lock and returns the
// resulting view. Decorators adjust the result before it is encoded.
func (h *handlers) withSession(req mcp.CallToolRequest, fn func(*session.Editor) bool, decorate ...func(*sessionResult)) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid session_id: " + err.Error()), nil
	}

	res := sessionResult{ID: id}
	err = h.deps.Sessions.Do(id, func(ed *session.Editor) error {
		res.Changed = fn(ed)
		res.Session = ed.View()
		return nil
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id)), nil
	}
	if err != nil {
		return nil, err
	}
	for _, d := range decorate {
		d(&res)
	}
	return mcp.NewToolResultJSON(res)
}

// jsonError returns an error result whose text is a JSON object carrying msg
// and extra fields.
func jsonError(msg string, extra map[string]any) (*mcp.CallToolResult, error) {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	result, err := mcp.NewToolResultJSON(body)
	if err != nil {
		return nil, err
	}
	result.IsError = true
	return result, nil
}
