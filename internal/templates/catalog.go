package templates

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/claude/replog/internal/models"
)

// Catalog holds the loaded templates plus workouts composed at runtime.
// Composed workouts shadow loaded templates of the same name.
type Catalog struct {
	loader Loader
	log    *slog.Logger

	mu       sync.RWMutex
	loaded   []models.WorkoutTemplate
	composed []models.WorkoutTemplate
}

// NewCatalog creates a Catalog backed by l. Call Refresh to populate it.
func NewCatalog(l Loader, log *slog.Logger) *Catalog {
	return &Catalog{loader: l, log: log}
}

// Refresh reloads templates from the loader. Failures leave the catalog with
// no loaded templates.
func (c *Catalog) Refresh(ctx context.Context) int {
	tpls := LoadTemplates(ctx, c.loader, c.log)
	c.mu.Lock()
	c.loaded = tpls
	c.mu.Unlock()
	c.log.Info("workout templates loaded", "count", len(tpls))
	return len(tpls)
}

// AddComposed records a workout built with the composer.
func (c *Catalog) AddComposed(w models.Workout) models.WorkoutTemplate {
	tpl := models.WorkoutTemplate{
		Name:      w.Title,
		Exercises: append([]string(nil), w.Exercises...),
		Sets:      defaultSets,
		Reps:      defaultReps,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.composed {
		if strings.EqualFold(t.Name, tpl.Name) {
			c.composed[i] = tpl
			return tpl
		}
	}
	c.composed = append(c.composed, tpl)
	return tpl
}

// Templates returns composed workouts first, then loaded templates.
func (c *Catalog) Templates() []models.WorkoutTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.WorkoutTemplate, 0, len(c.composed)+len(c.loaded))
	out = append(out, c.composed...)
	out = append(out, c.loaded...)
	return out
}

// Types lists the workout types on offer.
func (c *Catalog) Types() []string {
	return WorkoutTypes(c.Templates())
}

// Workout resolves the workout a session for typeName starts from.
func (c *Catalog) Workout(typeName string) models.Workout {
	return CurrentWorkout(c.Templates(), typeName)
}
