package heritage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/heritage/internal/db"
	dbRedis "github.com/kailas-cloud/heritage/internal/db/redis"
	"github.com/kailas-cloud/heritage/internal/domain"
	domitem "github.com/kailas-cloud/heritage/internal/domain/item"
	domrisk "github.com/kailas-cloud/heritage/internal/domain/risk"
	itemrepo "github.com/kailas-cloud/heritage/internal/repository/item"
	"github.com/kailas-cloud/heritage/internal/transport/websearch"
	corpusuc "github.com/kailas-cloud/heritage/internal/usecase/corpus"
	embeddinguc "github.com/kailas-cloud/heritage/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
	itemuc "github.com/kailas-cloud/heritage/internal/usecase/item"
	referenceuc "github.com/kailas-cloud/heritage/internal/usecase/reference"
	riskuc "github.com/kailas-cloud/heritage/internal/usecase/risk"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "heritage:"
)

// Internal interfaces for substitution in tests.
type riskUseCase interface {
	Score(ctx context.Context, text, language string) (domrisk.Result, error)
}

type itemUseCase interface {
	Create(ctx context.Context, d domitem.Draft) (domitem.Item, error)
	Update(ctx context.Context, id string, d domitem.Draft) (domitem.Item, error)
	Get(ctx context.Context, id string) (domitem.Item, error)
	List(ctx context.Context, f domitem.Filter) ([]domitem.Item, error)
	Delete(ctx context.Context, id string) error
}

// Client is the heritage SDK entry point.
type Client struct {
	store     db.Store
	riskSvc   riskUseCase
	itemSvc   itemUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("heritage: database address required (use WithValkey or WithRedis)")
	}

	params, err := cfg.params()
	if err != nil {
		return nil, err
	}
	reference, err := cfg.referenceLookup()
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("heritage: database not ready: %w", err)
	}

	return wireClient(store, cfg, params, reference, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			ClientName: "heritage-sdk",
		})
		if err != nil {
			return nil, fmt.Errorf("heritage: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("heritage: unknown driver %q", cfg.driver)
	}
}

func (cfg *clientConfig) params() (domrisk.Params, error) {
	p := domrisk.DefaultParams()
	if cfg.weights != nil {
		p.Weights = domrisk.Weights(*cfg.weights)
	}
	if err := p.Validate(); err != nil {
		return domrisk.Params{}, fmt.Errorf("heritage: %w", err)
	}
	return p, nil
}

func (cfg *clientConfig) referenceLookup() (referenceuc.Lookup, error) {
	if cfg.reference != nil {
		return cfg.reference, nil
	}
	if cfg.searchKey == "" && cfg.searchEngine == "" {
		return noopLookup{}, nil
	}
	c, err := websearch.New(websearch.Config{APIKey: cfg.searchKey, EngineID: cfg.searchEngine})
	if err != nil {
		return nil, fmt.Errorf("heritage: %w", err)
	}
	return c, nil
}

func wireClient(
	store db.Store, cfg *clientConfig, params domrisk.Params, reference referenceuc.Lookup, obs *observer,
) *Client {
	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}
	emb = embeddinguc.NewInstrumentedEmbedder(emb, "sdk", "custom", cfg.dimensions, zap.NewNop())

	site := cfg.sinhalaSite
	if site == "" {
		site = referenceuc.DefaultSinhalaSite
	}

	items := itemrepo.New(store, cfg.keyPrefix)
	corpus := corpusuc.New(items, corpusuc.Policy{
		RefreshInterval: cfg.refreshInterval,
		WriteThreshold:  cfg.writeThreshold,
	}, zap.NewNop())
	riskSvc := riskuc.New(emb, referenceuc.New(reference, site), corpus, params)

	return &Client{
		store:     store,
		riskSvc:   riskSvc,
		itemSvc:   itemuc.New(items, riskSvc, corpus),
		healthSvc: healthuc.New(0, healthuc.Database(store)),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opPing, start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Score assesses text without storing it.
func (c *Client) Score(ctx context.Context, text, language string) (_ Risk, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opScore, start, err, slog.String("language", language)) }()

	r, err := c.riskSvc.Score(ctx, text, language)
	if err != nil {
		return Risk{}, fmt.Errorf("score: %w", err)
	}
	out := riskFromDomain(r)
	c.obs.assessed(opScore, out.Level)
	return out, nil
}

// Items returns the item management service.
func (c *Client) Items() *ItemService {
	return &ItemService{svc: c.itemSvc, obs: c.obs}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, domain.NewDependencyError("embedding", domain.DependencyNetwork,
		errors.New("heritage: embedder not configured (use WithEmbedder)"))
}

// noopLookup fails every reference lookup (used when no search API configured).
type noopLookup struct{}

func (noopLookup) Lookup(_ context.Context, _, _ string) (int, error) {
	return 0, domain.NewDependencyError("websearch", domain.DependencyNetwork,
		errors.New("heritage: reference lookup not configured (use WithSearchAPI or WithReferenceLookup)"))
}
