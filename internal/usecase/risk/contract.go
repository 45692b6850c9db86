package risk

import (
	"context"

	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	"github.com/kailas-cloud/heritage/internal/index"
)

// ReferenceScorer computes the digital reference signal.
type ReferenceScorer interface {
	Score(ctx context.Context, text, language string) (domrisk.Reference, error)
}

// IndexSource provides the similarity index snapshot for one assessment.
type IndexSource interface {
	Snapshot(ctx context.Context) (*index.Flat, error)
}
