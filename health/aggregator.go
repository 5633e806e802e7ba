package health

import (
	"context"
	"time"
)

// Report is the aggregated outcome of all checks.
type Report struct {
	Status Status            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

// Aggregator runs a set of checkers and folds their results.
type Aggregator struct {
	checkers []Checker
	timeout  time.Duration
}

// NewAggregator creates an aggregator with a per-check timeout.
func NewAggregator(timeout time.Duration, checkers ...Checker) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{checkers: checkers, timeout: timeout}
}

// Run executes all checks. The overall status is the worst individual
// status: any unhealthy check makes the report unhealthy.
func (a *Aggregator) Run(ctx context.Context) Report {
	report := Report{
		Status: StatusHealthy,
		Checks: make(map[string]Result, len(a.checkers)),
	}

	for _, checker := range a.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
		start := time.Now()
		result := checker.Check(checkCtx)
		result.Duration = time.Since(start)
		cancel()

		report.Checks[checker.Name()] = result
		if result.Status > report.Status {
			report.Status = result.Status
		}
	}
	return report
}
