// Package templates loads workout templates from an external source and
// resolves the workout a session starts from.
//
// Every source failure is logged and masked: callers always get a usable
// (possibly empty) template list and the built-in default workout.
package templates

import (
	"context"
	"log/slog"
	"strings"

	"github.com/claude/replog/internal/models"
)

const (
	defaultSets = 3
	defaultReps = "8-12"
)

// DefaultTypes are the workout types offered when no template is loaded.
var DefaultTypes = []string{"Push", "Pull", "Legs"}

// Loader fetches workout templates.
type Loader interface {
	Load(ctx context.Context) ([]models.WorkoutTemplate, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]models.WorkoutTemplate, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return f(ctx)
}

// LoadTemplates calls l once. A nil loader or a failed load yields an empty
// list; the error is logged, never returned.
func LoadTemplates(ctx context.Context, l Loader, log *slog.Logger) []models.WorkoutTemplate {
	if l == nil {
		return nil
	}
	tpls, err := l.Load(ctx)
	if err != nil {
		log.Error("failed to load workout templates", "error", err)
		return nil
	}
	return tpls
}

// DefaultWorkout is the session used when no template matches.
func DefaultWorkout() models.Workout {
	return models.Workout{
		Title:     "Push",
		Exercises: []string{"Bench Press", "Shoulder Press"},
	}
}

// WorkoutTypes lists the template names, or DefaultTypes when there are none.
func WorkoutTypes(tpls []models.WorkoutTemplate) []string {
	var names []string
	seen := make(map[string]bool)
	for _, t := range tpls {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, t.Name)
	}
	if len(names) == 0 {
		return append([]string(nil), DefaultTypes...)
	}
	return names
}

// CurrentWorkout returns the workout for typeName: the first template with
// that name (case-insensitive) that has exercises, else DefaultWorkout.
func CurrentWorkout(tpls []models.WorkoutTemplate, typeName string) models.Workout {
	want := strings.TrimSpace(typeName)
	for _, t := range tpls {
		if strings.EqualFold(strings.TrimSpace(t.Name), want) && len(t.Exercises) > 0 {
			return t.Workout()
		}
	}
	return DefaultWorkout()
}

// Unconfigured is the loader used when no template source is set up.
type Unconfigured struct {
	Log *slog.Logger
}

// Load logs that no source is configured and returns nothing.
func (u Unconfigured) Load(context.Context) ([]models.WorkoutTemplate, error) {
	if u.Log != nil {
		u.Log.Info("template source not configured")
	}
	return nil, nil
}
