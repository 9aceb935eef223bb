// Package metrics holds the Prometheus collectors for the branding engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Write outcomes.
const (
	OutcomeAuthoritative = "authoritative"
	OutcomeDegraded      = "degraded"
	OutcomeFailed        = "failed"
)

// Autosave results.
const (
	AutosaveSaved      = "saved"
	AutosaveSuppressed = "suppressed"
	AutosaveFailed     = "failed"
)

var (
	// FetchTotal counts fetches by the tier that produced the config.
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandkit_fetch_total",
			Help: "Theme fetches by the persistence tier that served them.",
		},
		[]string{"tier"},
	)
	// WriteTotal counts persistence writes by outcome.
	WriteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandkit_write_total",
			Help: "Theme writes by outcome.",
		},
		[]string{"outcome"},
	)
	// ApplyTotal counts styling-surface applies.
	ApplyTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brandkit_apply_total",
			Help: "Number of styling surface applies.",
		},
	)
	// ApplyStepFailures counts failed apply sub-steps.
	ApplyStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandkit_apply_step_failures_total",
			Help: "Apply sub-steps that failed and were skipped.",
		},
		[]string{"step"},
	)
	// AutosaveTotal counts debounce expiries by result.
	AutosaveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandkit_autosave_total",
			Help: "Autosave debounce expiries by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(WriteTotal)
	prometheus.MustRegister(ApplyTotal)
	prometheus.MustRegister(ApplyStepFailures)
	prometheus.MustRegister(AutosaveTotal)
}
