package chi

import (
	"context"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
)

// RiskScorer scores free-form text.
type RiskScorer interface {
	Score(ctx context.Context, text, language string) (domrisk.Result, error)
}

// ItemService manages stored cultural items.
type ItemService interface {
	Create(ctx context.Context, d domitem.Draft) (domitem.Item, error)
	Update(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error)
	Get(ctx context.Context, id string) (domitem.Item, error)
	List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error)
	Delete(ctx context.Context, id string) error
}

// HealthReporter runs dependency probes.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
