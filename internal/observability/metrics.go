package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lifting_diary",
		Subsystem: "persistence",
		Name:      "last_workout_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout persisted.",
	})
	setRecordedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lifting_diary",
		Subsystem: "persistence",
		Name:      "last_set_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent set persisted.",
	})
	mutationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lifting_diary",
		Subsystem: "mutations",
		Name:      "applied_total",
		Help:      "Count of successful mutations by operation.",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(workoutLoggedGauge, setRecordedGauge, mutationCounter)
}

// RecordWorkoutLogged updates the workout watermark gauge.
func RecordWorkoutLogged(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutLoggedGauge.Set(float64(ts.Unix()))
}

// RecordSetRecorded updates the set watermark gauge.
func RecordSetRecorded(ts time.Time) {
	if ts.IsZero() {
		return
	}
	setRecordedGauge.Set(float64(ts.Unix()))
}

// CountMutation increments the per-operation mutation counter.
func CountMutation(operation string) {
	mutationCounter.WithLabelValues(operation).Inc()
}
