package heritage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
)

// ItemService manages stored cultural items. Create and Update score the description.
type ItemService struct {
	svc itemUseCase
	obs *observer
}

// Create validates, scores and stores a new item.
func (s *ItemService) Create(ctx context.Context, in ItemInput) (_ Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe(opItemCreate, start, err) }()

	it, err := s.svc.Create(ctx, in.toDraft())
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	return s.assessedItem(opItemCreate, &it), nil
}

// Update replaces the user fields of an item and scores it again.
func (s *ItemService) Update(ctx context.Context, id string, in ItemInput) (_ Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe(opItemUpdate, start, err, slog.String("id", id)) }()

	it, err := s.svc.Update(ctx, id, in.toDraft())
	if err != nil {
		return Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	return s.assessedItem(opItemUpdate, &it), nil
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, id string) (_ Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe(opItemGet, start, err, slog.String("id", id)) }()

	it, err := s.svc.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("get item %s: %w", id, err)
	}
	return itemFromDomain(&it), nil
}

// List returns items in creation order.
func (s *ItemService) List(ctx context.Context, opts ListOptions) (_ []Item, err error) {
	start := time.Now()
	defer func() { s.obs.observe(opItemList, start, err, slog.String("category", opts.Category)) }()

	list, err := s.svc.List(ctx, domitem.Filter{Category: opts.Category, Limit: opts.Limit})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]Item, len(list))
	for i := range list {
		out[i] = itemFromDomain(&list[i])
	}
	return out, nil
}

// Delete removes an item.
func (s *ItemService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe(opItemDelete, start, err, slog.String("id", id)) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

func (s *ItemService) assessedItem(op string, it *domitem.Item) Item {
	out := itemFromDomain(it)
	if out.Risk != nil {
		s.obs.assessed(op, out.Risk.Level)
	}
	return out
}
