// Package submit delivers confirmed workouts to their destination: the log,
// a remote HTTP endpoint, or the Postgres history store.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/replog/internal/identity"
	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/session"
	"github.com/google/uuid"
)

var (
	_ session.Submitter = Log{}
	_ session.Submitter = (*HTTP)(nil)
	_ session.Submitter = (*DB)(nil)
	_ session.Submitter = Multi(nil)
)

// Log writes the payload to the log and nothing else.
type Log struct {
	Log *slog.Logger
}

// Submit logs a summary of the payload.
func (l Log) Submit(_ context.Context, p models.WorkoutPayload) error {
	l.Log.Info("workout submitted", "workout", p.WorkoutName,
		"exercises", len(p.Exercises), "sets", p.SetCount())
	return nil
}

const maxAttempts = 3

// HTTP POSTs the payload as JSON, retrying with exponential backoff.
type HTTP struct {
	url        string
	httpClient *http.Client
	backoff    time.Duration
	log        *slog.Logger
}

// NewHTTP creates an HTTP submitter for url.
func NewHTTP(url string, log *slog.Logger) *HTTP {
	return &HTTP{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    time.Second,
		log:        log,
	}
}

// Submit sends the payload. Any 2xx status counts as delivered.
func (h *HTTP) Submit(ctx context.Context, p models.WorkoutPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			wait := h.backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		lastErr = h.post(ctx, data)
		if lastErr == nil {
			h.log.Info("workout delivered", "workout", p.WorkoutName, "attempt", attempt+1)
			return nil
		}
		h.log.Warn("workout delivery failed", "attempt", attempt+1, "error", lastErr)
	}

	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (h *HTTP) post(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("submit failed (status %d): %s", resp.StatusCode, body)
	}
	return nil
}

// Store persists submitted workouts.
type Store interface {
	InsertSubmittedWorkout(ctx context.Context, p models.WorkoutPayload, userID int, weightUnit string) (uuid.UUID, error)
}

// DB records the payload in the history store, tagged with the weight unit
// label in effect at submission. The owner is the user carried by the submit
// context, else the default user given to NewDB.
type DB struct {
	store  Store
	units  session.UnitLabeler
	userID int
	log    *slog.Logger
}

// NewDB creates a DB submitter. units may be nil.
func NewDB(store Store, units session.UnitLabeler, userID int, log *slog.Logger) *DB {
	return &DB{store: store, units: units, userID: userID, log: log}
}

// Submit inserts the payload.
func (d *DB) Submit(ctx context.Context, p models.WorkoutPayload) error {
	unit := session.DefaultWeightLabel
	if d.units != nil {
		unit = d.units.WeightUnitLabel()
	}
	userID := d.userID
	if u, ok := identity.From(ctx); ok && u.ID != 0 {
		userID = u.ID
	}
	id, err := d.store.InsertSubmittedWorkout(ctx, p, userID, unit)
	if err != nil {
		return fmt.Errorf("storing workout: %w", err)
	}
	d.log.Info("workout stored", "id", id, "user_id", userID, "workout", p.WorkoutName, "sets", p.SetCount())
	return nil
}

// Multi hands the payload to every submitter in order and joins their errors.
type Multi []session.Submitter

// Submit calls each submitter, even after a failure.
func (m Multi) Submit(ctx context.Context, p models.WorkoutPayload) error {
	var errs []error
	for _, s := range m {
		if err := s.Submit(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
