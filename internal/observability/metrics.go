package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitness_tracker",
		Subsystem: "workouts",
		Name:      "logged_total",
		Help:      "Number of workouts appended and persisted.",
	})
	workoutLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitness_tracker",
		Subsystem: "workouts",
		Name:      "last_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout logged.",
	})
	saveFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitness_tracker",
		Subsystem: "storage",
		Name:      "save_failures_total",
		Help:      "Number of full-list writes that failed and were rolled back.",
	})
	loadResetCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitness_tracker",
		Subsystem: "storage",
		Name:      "load_resets_total",
		Help:      "Number of startups that discarded unparseable stored workouts.",
	})
)

func init() {
	prometheus.MustRegister(workoutsLoggedCounter, workoutLoggedGauge, saveFailureCounter, loadResetCounter)
}

// RecordWorkoutLogged counts a logged workout and moves the watermark gauge.
func RecordWorkoutLogged(ts time.Time) {
	workoutsLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	workoutLoggedGauge.Set(float64(ts.Unix()))
}

// RecordSaveFailure counts a failed full-list write.
func RecordSaveFailure() {
	saveFailureCounter.Inc()
}

// RecordLoadReset counts a fail-soft reset of unparseable stored data.
func RecordLoadReset() {
	loadResetCounter.Inc()
}

// LoadResets reports the load reset counter.
func LoadResets() prometheus.Counter {
	return loadResetCounter
}

// SaveFailures reports the save failure counter.
func SaveFailures() prometheus.Counter {
	return saveFailureCounter
}
