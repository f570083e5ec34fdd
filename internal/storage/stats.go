package storage

import (
	"context"
	"fmt"
	"time"
)

// HistoryStats holds aggregate statistics about submitted workouts.
type HistoryStats struct {
	TotalWorkouts  int64             `json:"total_workouts"`
	TotalSets      int64             `json:"total_sets"`
	FirstSubmitted *time.Time        `json:"first_submitted"`
	LastSubmitted  *time.Time        `json:"last_submitted"`
	WorkoutsByName []WorkoutNameStat `json:"workouts_by_name"`
}

// WorkoutNameStat holds summary stats for one workout name.
type WorkoutNameStat struct {
	Name      string `json:"name"`
	Count     int64  `json:"count"`
	TotalSets int64  `json:"total_sets"`
}

// GetHistoryStats returns aggregate statistics for a user's submitted workouts.
func (db *DB) GetHistoryStats(ctx context.Context, userID int) (*HistoryStats, error) {
	stats := &HistoryStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(set_count), 0), MIN(submitted_at), MAX(submitted_at)
		 FROM logged_workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalSets, &stats.FirstSubmitted, &stats.LastSubmitted)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT name, COUNT(*), COALESCE(SUM(set_count), 0)
		 FROM logged_workouts
		 WHERE user_id = $1
		 GROUP BY name
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutNameStat
		if err := rows.Scan(&s.Name, &s.Count, &s.TotalSets); err != nil {
			return nil, fmt.Errorf("scanning workout name stat: %w", err)
		}
		stats.WorkoutsByName = append(stats.WorkoutsByName, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
