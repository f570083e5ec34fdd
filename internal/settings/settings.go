// Package settings persists user preferences in a local SQLite file.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// WeightUnit is the unit weights are entered in. The label is shown next to
// weight inputs; values are never converted.
type WeightUnit string

const (
	Pounds    WeightUnit = "Pounds"
	Kilograms WeightUnit = "Kilograms"
)

// DefaultWeightUnit is used until a preference is saved.
const DefaultWeightUnit = Pounds

const weightUnitKey = "weight_unit"

// Label returns the short form shown in the UI.
func (u WeightUnit) Label() string {
	if u == Kilograms {
		return "Kg"
	}
	return "Lbs"
}

// ParseWeightUnit accepts a unit name or label, case-insensitively.
func ParseWeightUnit(s string) (WeightUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pounds", "lbs", "lb":
		return Pounds, nil
	case "kilograms", "kg", "kgs":
		return Kilograms, nil
	default:
		return "", fmt.Errorf("unknown weight unit %q", s)
	}
}

// Store is a key/value preference table in SQLite. The weight unit is cached
// after the first read.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	mu     sync.RWMutex
	unit   WeightUnit
	cached bool
}

// Open opens (or creates) the settings database at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating settings dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening settings db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating settings table: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// WeightUnit returns the saved unit, or DefaultWeightUnit when none is saved.
func (s *Store) WeightUnit(ctx context.Context) (WeightUnit, error) {
	s.mu.RLock()
	if s.cached {
		u := s.unit
		s.mu.RUnlock()
		return u, nil
	}
	s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, weightUnitKey).Scan(&value)
	unit := DefaultWeightUnit
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return "", fmt.Errorf("reading weight unit: %w", err)
	default:
		if parsed, perr := ParseWeightUnit(value); perr == nil {
			unit = parsed
		} else {
			s.log.Warn("ignoring stored weight unit", "value", value)
		}
	}

	s.mu.Lock()
	s.unit, s.cached = unit, true
	s.mu.Unlock()
	return unit, nil
}

// SetWeightUnit saves the unit.
func (s *Store) SetWeightUnit(ctx context.Context, u WeightUnit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		weightUnitKey, string(u))
	if err != nil {
		return fmt.Errorf("saving weight unit: %w", err)
	}

	s.mu.Lock()
	s.unit, s.cached = u, true
	s.mu.Unlock()
	s.log.Info("weight unit changed", "unit", u)
	return nil
}

// WeightUnitLabel returns the label of the current unit. Read failures fall
// back to the default label.
func (s *Store) WeightUnitLabel() string {
	u, err := s.WeightUnit(context.Background())
	if err != nil {
		s.log.Error("failed to read weight unit", "error", err)
		return DefaultWeightUnit.Label()
	}
	return u.Label()
}

// Close closes the settings database.
func (s *Store) Close() error {
	return s.db.Close()
}
