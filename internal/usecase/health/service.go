// Package health aggregates dependency checks into one service status.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Check is one named component probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Database probes the store with PING.
func Database(db DBPinger) Check {
	return Check{Name: "database", Probe: db.Ping}
}

// Embedding probes the embedding provider.
func Embedding(e EmbeddingChecker) Check {
	return Check{Name: "embedding", Probe: e.HealthCheck}
}

// Service coordinates health checks.
type Service struct {
	checks  []Check
	timeout time.Duration
}

// New creates a Service. Each probe gets timeout; zero means 3s.
func New(timeout time.Duration, checks ...Check) *Service {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Service{checks: checks, timeout: timeout}
}

// Check runs all probes concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.checks))
		g      errgroup.Group
	)

	for _, c := range s.checks {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.Probe(pctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[c.Name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // probes never return errors

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
