// Package metrics records operational metrics from the trips pipeline
// behind a small backend-agnostic interface.
//
// A global backend defaults to a no-op, so instrumentation is always safe to
// call. Concrete systems (Prometheus Pushgateway, DogStatsD) live in
// subpackages and are installed once at startup with SetBackend.
package metrics

import "time"

// Metric names emitted by the pipeline.
const (
	StepTotal           = "trips_step_total"
	StepDurationSeconds = "trips_step_duration_seconds"
	UnitsTotal          = "trips_units_total"
	RowsTotal           = "trips_rows_total"
	BytesTotal          = "trips_bytes_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend. Call it before the pipeline starts.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency and success/failure of one pipeline step
// (fetch, reconcile, aggregate, load).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordUnit counts one fetch unit by outcome (loaded, skipped, failed).
func RecordUnit(job, variant, status string) {
	backend.IncCounter(UnitsTotal, 1, Labels{
		"job":     job,
		"variant": variant,
		"status":  status,
	})
}

// RecordRows increments the row counter for kind, e.g. "fetched" or
// "inserted".
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBytes counts object bytes downloaded for a variant.
func RecordBytes(job, variant string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(BytesTotal, float64(n), Labels{
		"job":     job,
		"variant": variant,
	})
}
