// Package metrics exposes Prometheus counters for session activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts session operations. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	SessionsStarted     prometheus.Counter
	SetsLogged          prometheus.Counter
	WorkoutsComposed    prometheus.Counter
	WorkoutsSubmitted   *prometheus.CounterVec
	ValidationRejects   *prometheus.CounterVec
	ActiveSessionsGauge prometheus.Gauge
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replog",
			Name:      "sessions_started_total",
			Help:      "Workout sessions started.",
		}),
		SetsLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replog",
			Name:      "sets_added_total",
			Help:      "Sets added to running sessions.",
		}),
		WorkoutsComposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replog",
			Name:      "workouts_composed_total",
			Help:      "Workouts committed through the composer.",
		}),
		WorkoutsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replog",
			Name:      "workouts_submitted_total",
			Help:      "Confirmed workout submissions by outcome.",
		}, []string{"outcome"}),
		ValidationRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replog",
			Name:      "validation_rejections_total",
			Help:      "Form submissions rejected by validation, by form.",
		}, []string{"form"}),
		ActiveSessionsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "replog",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}
	reg.MustRegister(r.SessionsStarted, r.SetsLogged, r.WorkoutsComposed,
		r.WorkoutsSubmitted, r.ValidationRejects, r.ActiveSessionsGauge)
	return r
}

// SessionStarted records a new session and the current session count.
func (r *Recorder) SessionStarted(active int) {
	if r == nil {
		return
	}
	r.SessionsStarted.Inc()
	r.ActiveSessionsGauge.Set(float64(active))
}

// SessionEnded records the session count after a session is dropped.
func (r *Recorder) SessionEnded(active int) {
	if r == nil {
		return
	}
	r.ActiveSessionsGauge.Set(float64(active))
}

// SetAdded records an added set.
func (r *Recorder) SetAdded() {
	if r == nil {
		return
	}
	r.SetsLogged.Inc()
}

// Composed records a committed composer form.
func (r *Recorder) Composed() {
	if r == nil {
		return
	}
	r.WorkoutsComposed.Inc()
}

// Submitted records a confirmed submission. err is the submitter's result.
func (r *Recorder) Submitted(err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.WorkoutsSubmitted.WithLabelValues(outcome).Inc()
}

// Rejected records a validation rejection of form ("compose", "add_exercises").
func (r *Recorder) Rejected(form string) {
	if r == nil {
		return
	}
	r.ValidationRejects.WithLabelValues(form).Inc()
}
