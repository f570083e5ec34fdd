package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/claude/replog/internal/models"
	"github.com/mitchellh/mapstructure"
)

// headerAliases maps normalized sheet headers to template fields. Earlier
// aliases win when a sheet has both columns filled.
var headerAliases = map[string]string{
	"workout name": "name",
	"workout_name": "name",
	"name":         "name",
	"exercises":    "exercises",
	"sets":         "sets",
	"reps":         "reps",
}

var aliasPriority = map[string]int{
	"workout name": 0,
	"workout_name": 0,
	"name":         1,
}

// rawTemplate is one sheet row after header normalization.
type rawTemplate struct {
	Name      string `mapstructure:"name"`
	Exercises string `mapstructure:"exercises"`
	Sets      string `mapstructure:"sets"`
	Reps      string `mapstructure:"reps"`
}

// FromRows converts a header row followed by data rows into templates.
// Unknown columns are ignored; rows with neither a name nor exercises are
// skipped.
func FromRows(rows [][]string) ([]models.WorkoutTemplate, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers := rows[0]

	var out []models.WorkoutTemplate
	for i, row := range rows[1:] {
		record := make(map[string]any)
		priority := make(map[string]int)
		for col, header := range headers {
			norm := strings.ToLower(strings.TrimSpace(header))
			field, ok := headerAliases[norm]
			if !ok || col >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[col])
			if value == "" {
				continue
			}
			p := aliasPriority[norm]
			if prev, seen := priority[field]; seen && prev <= p {
				continue
			}
			priority[field] = p
			record[field] = value
		}

		tpl, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if tpl.Name == "" && len(tpl.Exercises) == 0 {
			continue
		}
		out = append(out, tpl)
	}
	return out, nil
}

// decodeRecord turns a normalized record into a template, applying the
// defaults for missing sets and reps.
func decodeRecord(record map[string]any) (models.WorkoutTemplate, error) {
	var raw rawTemplate
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(record); err != nil {
		return models.WorkoutTemplate{}, fmt.Errorf("decoding template: %w", err)
	}

	tpl := models.WorkoutTemplate{
		Name:      raw.Name,
		Exercises: splitExercises(raw.Exercises),
		Sets:      defaultSets,
		Reps:      raw.Reps,
	}
	if n, err := strconv.Atoi(raw.Sets); err == nil && n > 0 {
		tpl.Sets = n
	}
	if tpl.Reps == "" {
		tpl.Reps = defaultReps
	}
	return tpl, nil
}

// splitExercises splits "Bench, Dips,,Flyes" into trimmed non-empty names.
func splitExercises(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
