package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/replog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// flattenPayload turns a payload into one row per set. Exercise numbers start
// at 1 and follow the payload order.
func flattenPayload(workoutID uuid.UUID, userID int, p models.WorkoutPayload) []models.LoggedSetRow {
	rows := make([]models.LoggedSetRow, 0, p.SetCount())
	for i, ex := range p.Exercises {
		for _, s := range ex.Sets {
			rows = append(rows, models.LoggedSetRow{
				WorkoutID:      workoutID,
				UserID:         userID,
				ExerciseNumber: i + 1,
				ExerciseName:   ex.Name,
				SetNumber:      s.SetNumber,
				Reps:           s.Reps,
				Weight:         s.Weight,
			})
		}
	}
	return rows
}

// insertLoggedSets batch-inserts set rows inside tx. Returns count inserted.
func insertLoggedSets(ctx context.Context, tx pgx.Tx, rows []models.LoggedSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO logged_sets (workout_id, user_id, exercise_number, exercise_name,
		set_number, reps, weight) VALUES `
	args := make([]any, 0, len(rows)*7)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args, r.WorkoutID, r.UserID, r.ExerciseNumber, r.ExerciseName,
			r.SetNumber, r.Reps, r.Weight)
	}

	query += strings.Join(valueStrings, ",")

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting logged sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryLoggedSets retrieves the sets of one submitted workout in order.
func (db *DB) QueryLoggedSets(ctx context.Context, workoutID uuid.UUID) ([]models.LoggedSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT workout_id, user_id, exercise_number, exercise_name, set_number, reps, weight
		 FROM logged_sets
		 WHERE workout_id = $1
		 ORDER BY exercise_number ASC, set_number ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying logged sets: %w", err)
	}
	defer rows.Close()

	var result []models.LoggedSetRow
	for rows.Next() {
		var r models.LoggedSetRow
		if err := rows.Scan(&r.WorkoutID, &r.UserID, &r.ExerciseNumber, &r.ExerciseName,
			&r.SetNumber, &r.Reps, &r.Weight); err != nil {
			return nil, fmt.Errorf("scanning logged set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
