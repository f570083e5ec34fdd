package mcp

import (
	"context"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// HistorySource abstracts the submitted-workout store for MCP tools. Both
// *storage.DB (local) and HTTPClient (remote via REST API) satisfy this
// interface.
type HistorySource interface {
	QueryHistory(ctx context.Context, userID, limit int) ([]models.LoggedWorkoutRow, error)
	GetLoggedWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*storage.LoggedWorkoutDetail, error)
	GetHistoryStats(ctx context.Context, userID int) (*storage.HistoryStats, error)
}

// Compile-time check: *storage.DB satisfies HistorySource.
var _ HistorySource = (*storage.DB)(nil)
