// Package item manages cultural items: every stored description is scored and its
// embedding joins the similarity corpus for later assessments.
package item

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	"github.com/kailas-cloud/heritage/internal/logger"
)

const (
	// DefaultListLimit applies when the caller sets no limit.
	DefaultListLimit = 50
	// MaxListLimit caps a single listing.
	MaxListLimit = 500
)

// Service orchestrates item operations.
type Service struct {
	repo     Repository
	assessor Assessor
	corpus   CorpusNotifier
	now      func() time.Time
}

// New creates an item service.
func New(repo Repository, assessor Assessor, corpus CorpusNotifier) *Service {
	return &Service{repo: repo, assessor: assessor, corpus: corpus, now: time.Now}
}

// Create validates the draft, scores the description and stores the item with its embedding.
func (s *Service) Create(ctx context.Context, d domitem.Draft) (domitem.Item, error) {
	it, err := domitem.New(d, s.now())
	if err != nil {
		return domitem.Item{}, err
	}
	it, err = s.assessAndSave(ctx, it)
	if err != nil {
		return domitem.Item{}, err
	}

	logger.FromContext(ctx).Info("Item created",
		zap.String("id", it.ID()),
		zap.String("risk_level", string(it.Risk().Level())),
	)
	return it, nil
}

// Update replaces the user fields of an existing item and re-scores it.
func (s *Service) Update(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error) {
	id, err := domitem.ParseID(id)
	if err != nil {
		return domitem.Item{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	it, err := current.Replace(d, s.now())
	if err != nil {
		return domitem.Item{}, err
	}
	return s.assessAndSave(ctx, it)
}

// Get returns an item by ID.
func (s *Service) Get(ctx context.Context, id string) (domitem.Item, error) {
	id, err := domitem.ParseID(id)
	if err != nil {
		return domitem.Item{}, err
	}
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// List returns items in creation order.
func (s *Service) List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Delete removes an item and drops the cached similarity index.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := domitem.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.corpus.Invalidate()
	return nil
}

func (s *Service) assessAndSave(ctx context.Context, it domitem.Item) (domitem.Item, error) {
	a, err := s.assessor.AssessExcluding(ctx, it.Description(), it.Language(), it.ID())
	if err != nil {
		return domitem.Item{}, fmt.Errorf("assess item: %w", err)
	}
	it = it.WithAssessment(a.Result, a.Embedding)

	if err := s.repo.Save(ctx, &it); err != nil {
		return domitem.Item{}, fmt.Errorf("save item: %w", err)
	}
	s.corpus.NoteWrite()
	return it, nil
}
