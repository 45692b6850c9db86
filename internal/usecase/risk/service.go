// Package risk runs the four signals over a text and aggregates them into a risk result.
package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/heritage/internal/domain"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	"github.com/kailas-cloud/heritage/internal/index"
	"github.com/kailas-cloud/heritage/internal/logger"
	"github.com/kailas-cloud/heritage/internal/metrics"
)

// Assessment is a risk result together with the text embedding it was computed from.
type Assessment struct {
	Result    domrisk.Result
	Embedding []float32
}

// Service is the risk aggregator.
type Service struct {
	embedder  domain.Embedder
	reference ReferenceScorer
	corpus    IndexSource
	params    domrisk.Params
}

// New creates a risk service. params must have passed Validate.
func New(
	embedder domain.Embedder, reference ReferenceScorer, corpus IndexSource, params domrisk.Params,
) *Service {
	return &Service{embedder: embedder, reference: reference, corpus: corpus, params: params}
}

// Score assesses text and returns only the risk result.
func (s *Service) Score(ctx context.Context, text, language string) (domrisk.Result, error) {
	a, err := s.Assess(ctx, text, language)
	if err != nil {
		return domrisk.Result{}, err
	}
	return a.Result, nil
}

// Assess computes all four signals. The reference lookup, the embedding and the index
// snapshot run concurrently; the first failure cancels the rest and no partial result
// is returned.
func (s *Service) Assess(ctx context.Context, text, language string) (Assessment, error) {
	return s.AssessExcluding(ctx, text, language, "")
}

// AssessExcluding is Assess with the corpus record excludeID left out of the local
// similarity signal. Re-scoring a stored item passes its own ID so its earlier
// embedding does not count as prior documentation.
func (s *Service) AssessExcluding(ctx context.Context, text, language, excludeID string) (Assessment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Assessment{}, fmt.Errorf("text is required: %w", domain.ErrInvalidInput)
	}
	language = domrisk.NormalizeLanguage(language)
	start := time.Now()

	var (
		ref domrisk.Reference
		emb domain.EmbeddingResult
		idx *index.Flat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ref, err = s.reference.Score(gctx, text, language)
		return err
	})
	g.Go(func() error {
		var err error
		emb, err = s.embedder.Embed(gctx, text)
		return err
	})
	g.Go(func() error {
		var err error
		idx, err = s.corpus.Snapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Assessment{}, fmt.Errorf("assess: %w", err)
	}

	local, err := s.localSignal(idx, emb.Embedding, excludeID)
	if err != nil {
		return Assessment{}, err
	}

	result := s.params.Evaluate(domrisk.Components{
		Length:   domrisk.LengthSignal(text),
		Language: domrisk.LanguageSignal(s.params.LanguageRarity, language),
		Digital:  ref,
		Local:    local,
	})

	metrics.RiskAssessmentsTotal.WithLabelValues(string(result.Level())).Inc()
	metrics.RiskScore.Observe(result.Score())
	logger.FromContext(ctx).Debug("Risk assessed",
		zap.Float64("score", result.Score()),
		zap.String("level", string(result.Level())),
		zap.String("language", language),
		zap.Int("sources_matched", ref.SourcesMatched),
		zap.Int("corpus_size", idx.Len()),
		zap.Duration("duration", time.Since(start)),
	)

	return Assessment{Result: result, Embedding: emb.Embedding}, nil
}

// localSignal scores novelty against the corpus. An empty corpus, or one holding only
// the excluded record, makes every text novel.
func (s *Service) localSignal(idx *index.Flat, vec []float32, excludeID string) (float64, error) {
	if idx.Empty() {
		return 1.0, nil
	}
	hits, err := idx.QueryExcluding(vec, s.params.Neighbors, excludeID)
	if err != nil {
		return 0, fmt.Errorf("local similarity: %w", err)
	}
	if len(hits) == 0 {
		return 1.0, nil
	}
	return domrisk.DistanceScore(s.params.Distances, hits[0].Distance), nil
}
