// Package reference computes the digital reference signal: how well a text is
// already documented on the web.
package reference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/heritage/internal/domain/risk"
	"github.com/kailas-cloud/heritage/internal/logger"
	"github.com/kailas-cloud/heritage/internal/metrics"
)

// DefaultSinhalaSite restricts Sinhala lookups to the Sinhala Wikipedia.
const DefaultSinhalaSite = "si.wikipedia.org"

// Service scores texts against an external lookup.
type Service struct {
	lookup      Lookup
	sinhalaSite string
}

// New creates a reference service. An empty sinhalaSite uses DefaultSinhalaSite.
func New(l Lookup, sinhalaSite string) *Service {
	if sinhalaSite == "" {
		sinhalaSite = DefaultSinhalaSite
	}
	return &Service{lookup: l, sinhalaSite: sinhalaSite}
}

// Score returns the digital reference sub-score and match count. A text without
// keyword candidates scores 0 with no lookup. Lookup failures are returned as is.
func (s *Service) Score(ctx context.Context, text, language string) (risk.Reference, error) {
	kw := risk.ExtractKeywords(text, language, s.sinhalaSite)
	if kw.Empty() {
		metrics.ReferenceLookupsTotal.WithLabelValues("skipped").Inc()
		logger.FromContext(ctx).Debug("No keyword candidates, skipping reference lookup")
		return risk.Reference{Score: 0, SourcesMatched: 0}, nil
	}

	matches, err := s.lookup.Lookup(ctx, kw.Phrase, kw.Site)
	if err != nil {
		return risk.Reference{}, fmt.Errorf("reference lookup: %w", err)
	}

	logger.FromContext(ctx).Debug("Reference lookup completed",
		zap.String("phrase", kw.Phrase),
		zap.String("site", kw.Site),
		zap.Int("matches", matches),
	)
	return risk.Reference{Score: risk.ReferenceScore(matches), SourcesMatched: matches}, nil
}
