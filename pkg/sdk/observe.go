package heritage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/heritage/internal/domain"
)

// Operation names, used as the "operation" label and the "op" log attribute.
const (
	opPing       = "ping"
	opHealth     = "health"
	opScore      = "score"
	opItemCreate = "item_create"
	opItemUpdate = "item_update"
	opItemGet    = "item_get"
	opItemList   = "item_list"
	opItemDelete = "item_delete"
)

// Outcome labels. Caller mistakes are kept apart from dependency failures so
// an alert on "dependency" is not tripped by bad input.
const (
	outcomeOK                = "ok"
	outcomeInvalidInput      = "invalid_input"
	outcomeNotFound          = "not_found"
	outcomeDependencyTimeout = "dependency_timeout"
	outcomeDependency        = "dependency"
	outcomeDimension         = "dimension_mismatch"
	outcomeError             = "error"
)

// Scoring can take several seconds when the reference lookup is slow.
var durationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10, 20}

type sdkMetrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	assessments *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heritage",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "heritage",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   durationBuckets,
		}, []string{"operation"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heritage",
			Subsystem: "sdk",
			Name:      "assessments_total",
			Help:      "Risk assessments produced through the SDK by operation and level.",
		}, []string{"operation", "level"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.assessments); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at the collector already registered
// under the same descriptor.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("heritage: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("heritage: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcome maps an operation error to its metric label.
func outcome(err error) string {
	var depErr *domain.DependencyError
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrInvalidInput):
		return outcomeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, domain.ErrDimensionMismatch):
		return outcomeDimension
	case errors.As(err, &depErr) && depErr.Kind == domain.DependencyTimeout:
		return outcomeDependencyTimeout
	case errors.Is(err, domain.ErrDependency), errors.Is(err, domain.ErrEmbeddingProviderError):
		return outcomeDependency
	default:
		return outcomeError
	}
}

// observer logs and counts SDK operations. A nil observer or nil fields disable
// the corresponding output.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error, attrs ...slog.Attr) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	out := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, out).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}

	attrs = append(attrs,
		slog.String("op", op),
		slog.String("outcome", out),
		slog.Duration("duration", dur),
	)
	level := slog.LevelDebug
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		if out != outcomeInvalidInput && out != outcomeNotFound {
			level = slog.LevelWarn
		}
	}
	o.logger.LogAttrs(context.Background(), level, "heritage operation", attrs...)
}

// assessed counts a produced risk assessment.
func (o *observer) assessed(op string, level Level) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.assessments.WithLabelValues(op, string(level)).Inc()
}
