package heritage

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "valkey" or "redis"
	addrs     []string
	password  string
	keyPrefix string

	embedder   Embedder
	dimensions int

	reference    ReferenceLookup
	searchKey    string
	searchEngine string
	sinhalaSite  string

	weights         *Weights
	refreshInterval time.Duration
	writeThreshold  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces all stored keys. Default "heritage:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider. Required for scoring.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions rejects embeddings of any other size.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithReferenceLookup sets a custom source for the digital reference signal.
func WithReferenceLookup(l ReferenceLookup) Option {
	return optionFunc(func(c *clientConfig) {
		c.reference = l
	})
}

// WithSearchAPI uses the Custom Search JSON API for the digital reference signal.
// Ignored when WithReferenceLookup is also given.
func WithSearchAPI(apiKey, engineID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchKey = apiKey
		c.searchEngine = engineID
	})
}

// WithSinhalaSite restricts Sinhala reference lookups to one site. Default si.wikipedia.org.
func WithSinhalaSite(site string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sinhalaSite = site
	})
}

// WithWeights overrides the component weights.
func WithWeights(w Weights) Option {
	return optionFunc(func(c *clientConfig) {
		c.weights = &w
	})
}

// WithIndexPolicy caches the similarity index, rebuilding it after refresh
// or after writes stored items. Without it the index is rebuilt per assessment.
func WithIndexPolicy(refresh time.Duration, writes int) Option {
	return optionFunc(func(c *clientConfig) {
		c.refreshInterval = refresh
		c.writeThreshold = writes
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
