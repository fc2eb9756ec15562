package observability

import "time"

// ObserveJob wraps one job execution and records duration + outcome.
// result should be one of done|retry|failed.
func (p *Prom) ObserveJob(jobType string, fn func() (result string)) {
	p.JobsInFlight.Inc()
	defer p.JobsInFlight.Dec()

	start := time.Now()
	result := fn()

	if result == "" {
		result = "done"
	}

	p.JobDuration.WithLabelValues(jobType, result).Observe(time.Since(start).Seconds())
	p.JobResults.WithLabelValues(jobType, result).Inc()
}
