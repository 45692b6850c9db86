// Package corpus serves similarity index snapshots over the stored embeddings.
package corpus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/heritage/internal/index"
	"github.com/kailas-cloud/heritage/internal/metrics"
)

// Build triggers, used as metric labels.
const (
	triggerPerRequest  = "per_request"
	triggerCold        = "cold"
	triggerExpired     = "expired"
	triggerWrites      = "writes"
	triggerInvalidated = "invalidated"
)

// Policy decides when a cached index is rebuilt. The zero Policy rebuilds on
// every Snapshot call, so every completed write is visible to the next query.
type Policy struct {
	// RefreshInterval is the maximum index age. Zero disables age-based rebuilds.
	RefreshInterval time.Duration
	// WriteThreshold is the number of noted writes that forces a rebuild. Zero disables it.
	WriteThreshold int
}

// PerRequest reports whether caching is disabled.
func (p Policy) PerRequest() bool {
	return p.RefreshInterval <= 0 && p.WriteThreshold <= 0
}

type snapshot struct {
	idx        *index.Flat
	builtAt    time.Time
	writesSeen int64
}

// Service builds and caches the similarity index.
// Readers holding an older *index.Flat keep using it; a rebuild never mutates it.
type Service struct {
	provider Provider
	policy   Policy
	logger   *zap.Logger
	now      func() time.Time

	current    atomic.Pointer[snapshot]
	writes     atomic.Int64
	generation atomic.Int64
	built      atomic.Bool
	group      singleflight.Group
}

// New creates a corpus service.
func New(p Provider, policy Policy, logger *zap.Logger) *Service {
	return &Service{provider: p, policy: policy, logger: logger, now: time.Now}
}

// Snapshot returns an index reflecting the corpus within the policy's staleness window.
func (s *Service) Snapshot(ctx context.Context) (*index.Flat, error) {
	if s.policy.PerRequest() {
		return s.build(ctx, triggerPerRequest)
	}

	snap := s.current.Load()
	trigger := s.stale(snap)
	if trigger == "" {
		return snap.idx, nil
	}

	// The shared rebuild outlives any single caller; each caller still honours its own ctx.
	ch := s.group.DoChan("rebuild", func() (any, error) {
		if cur := s.current.Load(); cur != nil && s.stale(cur) == "" {
			return cur.idx, nil
		}
		return s.rebuild(context.WithoutCancel(ctx), trigger)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for index: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*index.Flat), nil
	}
}

// NoteWrite counts a completed write towards the rebuild threshold.
func (s *Service) NoteWrite() {
	s.writes.Add(1)
}

// Invalidate drops the cached index. The next Snapshot rebuilds, and a rebuild
// already in flight is returned to its callers but not cached.
func (s *Service) Invalidate() {
	s.generation.Add(1)
	s.current.Store(nil)
}

func (s *Service) rebuild(ctx context.Context, trigger string) (*index.Flat, error) {
	gen := s.generation.Load()
	writes := s.writes.Load()
	builtAt := s.now()

	idx, err := s.build(ctx, trigger)
	if err != nil {
		return nil, err
	}

	if s.generation.Load() == gen {
		s.current.Store(&snapshot{idx: idx, builtAt: builtAt, writesSeen: writes})
		s.built.Store(true)
	}
	return idx, nil
}

func (s *Service) build(ctx context.Context, trigger string) (*index.Flat, error) {
	start := time.Now()

	records, err := s.provider.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	idx, err := index.Build(records)
	if err != nil {
		s.logger.Error("Corpus holds embeddings of different dimensions", zap.Error(err))
		return nil, fmt.Errorf("build index: %w", err)
	}

	duration := time.Since(start)
	metrics.IndexBuildsTotal.WithLabelValues(trigger).Inc()
	metrics.IndexBuildDuration.Observe(duration.Seconds())
	metrics.CorpusSize.Set(float64(idx.Len()))

	if trigger != triggerPerRequest {
		s.logger.Info("Similarity index rebuilt",
			zap.String("trigger", trigger),
			zap.Int("records", idx.Len()),
			zap.Int("dimensions", idx.Dim()),
			zap.Duration("duration", duration),
		)
	}
	return idx, nil
}

// stale returns the rebuild trigger for snap, or "" when it can be served.
func (s *Service) stale(snap *snapshot) string {
	switch {
	case snap == nil && s.built.Load():
		return triggerInvalidated
	case snap == nil:
		return triggerCold
	case s.policy.RefreshInterval > 0 && s.now().Sub(snap.builtAt) >= s.policy.RefreshInterval:
		return triggerExpired
	case s.policy.WriteThreshold > 0 && s.writes.Load()-snap.writesSeen >= int64(s.policy.WriteThreshold):
		return triggerWrites
	default:
		return ""
	}
}
