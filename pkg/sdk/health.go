package heritage

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
)

// HealthStatus reports whether the client can score and store items. The
// "database" component backs storage and the similarity corpus; "embedding"
// backs every assessment.
type HealthStatus struct {
	// Status is "ok", "degraded" or "error".
	Status string
	// Failing lists the failing components in name order, empty when healthy.
	Failing []string
}

// Healthy reports whether every component passed.
func (h HealthStatus) Healthy() bool {
	return h.Status == string(healthuc.Healthy)
}

// Health probes the database and the embedding provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	var failing []string
	for name, res := range report.Checks {
		if res != healthuc.CheckOK {
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)

	var err error
	if len(failing) > 0 {
		err = errors.New("failing: " + strings.Join(failing, ","))
	}
	c.obs.observe(opHealth, start, err, slog.String("status", string(report.Status)))

	return HealthStatus{Status: string(report.Status), Failing: failing}
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
