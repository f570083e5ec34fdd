package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/replog/internal/identity"
	"github.com/claude/replog/internal/metrics"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/settings"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UnitStore reads and saves the weight unit preference.
type UnitStore interface {
	session.UnitLabeler
	WeightUnit(ctx context.Context) (settings.WeightUnit, error)
	SetWeightUnit(ctx context.Context, u settings.WeightUnit) error
}

// HistoryStore lists submitted workouts.
type HistoryStore interface {
	QueryHistory(ctx context.Context, userID, limit int) ([]models.LoggedWorkoutRow, error)
	GetLoggedWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*storage.LoggedWorkoutDetail, error)
	GetHistoryStats(ctx context.Context, userID int) (*storage.HistoryStats, error)
}

// Deps are the collaborators of the HTTP API. Units, History, Metrics,
// MetricsHandler and MCP may be nil.
type Deps struct {
	Sessions       *session.Registry
	Catalog        *templates.Catalog
	Submitter      session.Submitter
	Units          UnitStore
	History        HistoryStore
	Users          UserResolver
	Metrics        *metrics.Recorder
	MetricsHandler http.Handler
	MCP            http.Handler
	DefaultUser    identity.User
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	deps   Deps
	who    WhoIser
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(deps Deps, apiKey string, log *slog.Logger) *Server {
	if deps.DefaultUser.ID == 0 {
		deps.DefaultUser = identity.Local
	}
	s := &Server{
		deps:   deps,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale makes requests act for the tailnet user that sent them.
func (s *Server) SetTailscale(who WhoIser) {
	s.who = who
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/workout-types", s.handleWorkoutTypes)
	s.router.Get("/api/v1/sessions/{id}", s.handleGetSession)
	s.router.Get("/api/v1/settings/unit", s.handleGetUnit)
	s.router.Get("/api/v1/history", s.handleHistory)
	s.router.Get("/api/v1/history/stats", s.handleHistoryStats)
	s.router.Get("/api/v1/history/{id}", s.handleHistoryWorkout)

	// Mutating endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/compose", s.handleCompose)
		r.Post("/api/v1/sessions", s.handleStartSession)
		r.Delete("/api/v1/sessions/{id}", s.handleEndSession)
		r.Post("/api/v1/sessions/{id}/sets", s.handleAddSet)
		r.Patch("/api/v1/sessions/{id}/sets", s.handleUpdateSet)
		r.Delete("/api/v1/sessions/{id}/sets", s.handleRemoveSet)
		r.Post("/api/v1/sessions/{id}/sets/gesture", s.handleSetGesture)
		r.Post("/api/v1/sessions/{id}/exercises", s.handleAddExercises)
		r.Post("/api/v1/sessions/{id}/pending", s.handleRequestPending)
		r.Post("/api/v1/sessions/{id}/pending/confirm", s.handleConfirmPending)
		r.Post("/api/v1/sessions/{id}/pending/cancel", s.handleCancelPending)
		r.Put("/api/v1/settings/unit", s.handlePutUnit)
		if s.deps.MCP != nil {
			r.Handle("/mcp", s.deps.MCP)
		}
	})

	if s.deps.MetricsHandler != nil {
		s.router.Handle("/metrics", s.deps.MetricsHandler)
	}
}
