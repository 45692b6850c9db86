package heritage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
)

// --- use case mocks ---

type mockRiskUC struct {
	scoreFn func(ctx context.Context, text, language string) (domrisk.Result, error)
}

func (m *mockRiskUC) Score(ctx context.Context, text, language string) (domrisk.Result, error) {
	return m.scoreFn(ctx, text, language)
}

type mockItemUC struct {
	createFn func(ctx context.Context, d domitem.Draft) (domitem.Item, error)
	updateFn func(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error)
	getFn    func(ctx context.Context, id string) (domitem.Item, error)
	listFn   func(ctx context.Context, f domitem.Filter) ([]domitem.Item, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockItemUC) Create(ctx context.Context, d domitem.Draft) (domitem.Item, error) {
	return m.createFn(ctx, d)
}

func (m *mockItemUC) Update(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error) {
	return m.updateFn(ctx, id, d)
}

func (m *mockItemUC) Get(ctx context.Context, id string) (domitem.Item, error) {
	return m.getFn(ctx, id)
}

func (m *mockItemUC) List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error) {
	return m.listFn(ctx, f)
}

func (m *mockItemUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- public interface mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockLookup struct {
	matches int
	err     error
	phrases []string
}

func (m *mockLookup) Lookup(_ context.Context, phrase, _ string) (int, error) {
	m.phrases = append(m.phrases, phrase)
	return m.matches, m.err
}

// --- in-memory db.Store ---

type memStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	kv     map[string][]byte
	closed bool
}

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}, kv: map[string][]byte{}}
}

func (s *memStore) Ping(context.Context) error { return nil }

func (s *memStore) Close() { s.closed = true }

func (s *memStore) WaitForReady(context.Context, time.Duration) error { return nil }

func (s *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hashes[key]
	if h == nil {
		h = map[string]string{}
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (s *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = s.HGetAll(ctx, k)
	}
	return out, nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
	delete(s.kv, key)
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.hashes[key]
	return ok, nil
}

func (s *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range s.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv[key], nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *memStore) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return s.Set(ctx, key, value)
}

// --- helpers ---

func testClient(risk riskUseCase, items itemUseCase, health healthUseCase, obs *observer) *Client {
	return &Client{
		riskSvc:   risk,
		itemSvc:   items,
		healthSvc: health,
		obs:       obs,
	}
}
