// Package item persists cultural items as Redis hashes and serves their
// embeddings as the similarity corpus.
package item

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/heritage/internal/domain"
	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	"github.com/kailas-cloud/heritage/internal/index"
)

// fetchBatch bounds the number of HGETALL commands per pipeline.
const fetchBatch = 256

// store is the consumer interface for items (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/item.Repository and usecase/corpus.Provider.
type Repo struct {
	store  store
	prefix string
}

// New creates an item repository. keyPrefix namespaces all keys, e.g. "heritage:".
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "item:"}
}

// Save writes the whole item, replacing any previous version.
func (r *Repo) Save(ctx context.Context, it *domitem.Item) error {
	fields, err := buildHashFields(it)
	if err != nil {
		return err
	}
	key := r.key(it.ID())
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns an item by ID.
func (r *Repo) Get(ctx context.Context, id string) (domitem.Item, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domitem.Item{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domitem.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return parseHashFields(id, m)
}

// List returns items in creation order.
func (r *Repo) List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error) {
	ids, hashes, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]domitem.Item, 0, len(ids))
	for i, id := range ids {
		if f.Category != "" && !strings.EqualFold(hashes[i][fieldCategory], f.Category) {
			continue
		}
		it, err := parseHashFields(id, hashes[i])
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		if f.Limit > 0 && len(items) == f.Limit {
			break
		}
	}
	return items, nil
}

// ListEmbeddings returns every stored vector in insertion order. Items without
// a vector are skipped.
func (r *Repo) ListEmbeddings(ctx context.Context) ([]index.Record, error) {
	ids, hashes, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]index.Record, 0, len(ids))
	for i, id := range ids {
		vec := bytesToVector(hashes[i][fieldVector])
		if vec == nil {
			continue
		}
		records = append(records, index.Record{ID: id, Embedding: vec})
	}
	return records, nil
}

// Delete removes an item.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// loadAll scans item keys and fetches their hashes, sorted by ID.
// IDs are UUIDv7, so lexical order is creation order.
func (r *Repo) loadAll(ctx context.Context) ([]string, []map[string]string, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, nil, fmt.Errorf("scan items: %w", err)
	}
	// SCAN may return a key more than once
	slices.Sort(keys)
	keys = slices.Compact(keys)

	ids := make([]string, 0, len(keys))
	hashes := make([]map[string]string, 0, len(keys))
	for start := 0; start < len(keys); start += fetchBatch {
		end := min(start+fetchBatch, len(keys))
		batch, err := r.store.HGetAllMulti(ctx, keys[start:end])
		if err != nil {
			return nil, nil, fmt.Errorf("fetch items: %w", err)
		}
		for i, m := range batch {
			// deleted between SCAN and HGETALL
			if len(m) == 0 {
				continue
			}
			ids = append(ids, strings.TrimPrefix(keys[start+i], r.prefix))
			hashes = append(hashes, m)
		}
	}
	return ids, hashes, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}
