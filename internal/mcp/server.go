package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/replog/internal/identity"
	"github.com/claude/replog/internal/metrics"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/templates"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Deps are the collaborators the MCP tools drive. History is optional; its
// tools and resources are only registered when set. DefaultUser is who a
// call acts for when its context carries no user.
type Deps struct {
	Sessions    *session.Registry
	Catalog     *templates.Catalog
	Submitter   session.Submitter
	Units       session.UnitLabeler
	History     HistorySource
	Metrics     *metrics.Recorder
	DefaultUser identity.User
}

// New creates an MCP server with all tools and resources registered.
func New(deps Deps, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepLog workout logging server. Start a session from a workout type, log reps and weight per set, then request and confirm the submit. Deletions and submits only take effect after confirm_pending."),
	)

	h := &handlers{deps: deps, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkoutTypes, Handler: h.listWorkoutTypes},
		server.ServerTool{Tool: toolComposeWorkout, Handler: h.composeWorkout},
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolAddSet, Handler: h.addSet},
		server.ServerTool{Tool: toolUpdateSet, Handler: h.updateSet},
		server.ServerTool{Tool: toolRemoveSet, Handler: h.removeSet},
		server.ServerTool{Tool: toolAddExercises, Handler: h.addExercises},
		server.ServerTool{Tool: toolRequestDeleteExercise, Handler: h.requestDeleteExercise},
		server.ServerTool{Tool: toolRequestSubmit, Handler: h.requestSubmit},
		server.ServerTool{Tool: toolConfirmPending, Handler: h.confirmPending},
		server.ServerTool{Tool: toolCancelPending, Handler: h.cancelPending},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkoutTypes, Handler: h.workoutTypes},
	)

	if deps.History != nil {
		s.AddTools(server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory})
		s.AddResources(server.ServerResource{Resource: resRecentHistory, Handler: h.recentHistory})
	}

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	deps Deps
	log  *slog.Logger
}

// user returns the caller carried by ctx, or the configured default.
func (h *handlers) user(ctx context.Context) identity.User {
	if h.deps.DefaultUser.ID == 0 {
		return identity.FromOr(ctx, identity.Local)
	}
	return identity.FromOr(ctx, h.deps.DefaultUser)
}

func (h *handlers) editorOptions() []session.Option {
	opts := []session.Option{session.WithLogger(h.log)}
	if h.deps.Submitter != nil {
		opts = append(opts, session.WithSubmitter(h.deps.Submitter))
	}
	if h.deps.Units != nil {
		opts = append(opts, session.WithUnits(h.deps.Units))
	}
	return opts
}

// --- Resource definitions ---

var resWorkoutTypes = mcp.NewResource(
	"replog://workout_types",
	"Workout Types",
	mcp.WithResourceDescription("Workout types with their template exercises, composed workouts first"),
	mcp.WithMIMEType("application/json"),
)

var resRecentHistory = mcp.NewResource(
	"replog://recent_history",
	"Recent History",
	mcp.WithResourceDescription("The last 10 submitted workouts"),
	mcp.WithMIMEType("application/json"),
)
