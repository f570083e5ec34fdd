package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrWorkoutNotFound is returned when a logged workout does not exist.
var ErrWorkoutNotFound = errors.New("workout not found")

// InsertSubmittedWorkout stores a submitted workout and its sets in one
// transaction and returns the new workout ID.
func (db *DB) InsertSubmittedWorkout(ctx context.Context, p models.WorkoutPayload, userID int, weightUnit string) (uuid.UUID, error) {
	id := uuid.New()
	row := models.LoggedWorkoutRow{
		ID:          id,
		UserID:      userID,
		Name:        p.WorkoutName,
		SubmittedAt: time.Now().UTC(),
		WeightUnit:  weightUnit,
		SetCount:    p.SetCount(),
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO logged_workouts (id, user_id, name, submitted_at, weight_unit, set_count)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		row.ID, row.UserID, row.Name, row.SubmittedAt, row.WeightUnit, row.SetCount)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting logged workout: %w", err)
	}

	if _, err := insertLoggedSets(ctx, tx, flattenPayload(id, userID, p)); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing workout: %w", err)
	}
	return id, nil
}

// QueryHistory returns the most recent submitted workouts for a user.
func (db *DB) QueryHistory(ctx context.Context, userID, limit int) ([]models.LoggedWorkoutRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, submitted_at, weight_unit, set_count
		 FROM logged_workouts
		 WHERE user_id = $1
		 ORDER BY submitted_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []models.LoggedWorkoutRow
	for rows.Next() {
		var w models.LoggedWorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.SubmittedAt, &w.WeightUnit, &w.SetCount); err != nil {
			return nil, fmt.Errorf("scanning logged workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// LoggedWorkoutDetail is a submitted workout with its sets.
type LoggedWorkoutDetail struct {
	models.LoggedWorkoutRow
	Sets []models.LoggedSetRow `json:"sets"`
}

// GetLoggedWorkout retrieves one submitted workout with its sets.
func (db *DB) GetLoggedWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*LoggedWorkoutDetail, error) {
	var d LoggedWorkoutDetail
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, submitted_at, weight_unit, set_count
		 FROM logged_workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.SubmittedAt, &d.WeightUnit, &d.SetCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying logged workout: %w", err)
	}

	d.Sets, err = db.QueryLoggedSets(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
