// Package websearch counts web pages matching a phrase through a Google Custom
// Search compatible JSON API.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/heritage/internal/domain"
	"github.com/kailas-cloud/heritage/internal/metrics"
)

const (
	dependencyName = "reference_lookup"

	// DefaultBaseURL is the public Custom Search endpoint host.
	DefaultBaseURL   = "https://www.googleapis.com"
	defaultTimeout   = 5 * time.Second
	defaultRateLimit = 5.0
	defaultBurst     = 5
	maxBodyBytes     = 1 << 20
)

// Config holds the web search client settings.
type Config struct {
	BaseURL  string
	APIKey   string
	EngineID string
	// Timeout bounds one lookup including the rate limiter wait. Default 5s.
	Timeout time.Duration
	// RateLimit is requests per second; Burst the bucket size.
	RateLimit float64
	Burst     int
	Logger    *zap.Logger
}

// Client is a Custom Search JSON API client.
type Client struct {
	baseURL    string
	apiKey     string
	engineID   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a web search client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, errors.New("websearch: api key and engine id are required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("websearch: invalid base url %q", baseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		timeout:    timeout,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(limit), burst),
		logger:     logger,
	}, nil
}

// searchResponse is the subset of the API response the client reads.
type searchResponse struct {
	SearchInformation *struct {
		TotalResults json.RawMessage `json:"totalResults"`
	} `json:"searchInformation"`
}

// Lookup returns the number of pages matching phrase, restricted to site when non-empty.
// Failures are *domain.DependencyError values.
func (c *Client) Lookup(ctx context.Context, phrase, site string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	n, err := c.lookup(ctx, phrase, site)
	metrics.ReferenceLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var depErr *domain.DependencyError
		if errors.As(err, &depErr) {
			metrics.ReferenceLookupsTotal.WithLabelValues(string(depErr.Kind)).Inc()
		}
		c.logger.Debug("Reference lookup failed", zap.String("phrase", phrase), zap.Error(err))
		return 0, err
	}

	metrics.ReferenceLookupsTotal.WithLabelValues("ok").Inc()
	return n, nil
}

func (c *Client) lookup(ctx context.Context, phrase, site string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		// Wait fails early when the deadline cannot be met.
		return 0, domain.NewDependencyError(dependencyName, domain.DependencyTimeout,
			fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(phrase, site), http.NoBody)
	if err != nil {
		return 0, domain.NewDependencyError(dependencyName, domain.DependencyNetwork,
			fmt.Errorf("build request: %w", redact(err)))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, domain.NewDependencyError(dependencyName, classify(ctx, err), redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, domain.NewDependencyError(dependencyName, classify(ctx, err), fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, domain.NewDependencyError(dependencyName, domain.DependencyNetwork,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, domain.NewDependencyError(dependencyName, domain.DependencyMalformed,
			fmt.Errorf("decode response: %w", err))
	}
	if parsed.SearchInformation == nil || len(parsed.SearchInformation.TotalResults) == 0 {
		return 0, domain.NewDependencyError(dependencyName, domain.DependencyMalformed,
			errors.New("response has no searchInformation.totalResults"))
	}

	n, err := parseTotal(parsed.SearchInformation.TotalResults)
	if err != nil {
		return 0, domain.NewDependencyError(dependencyName, domain.DependencyMalformed, err)
	}
	return n, nil
}

func (c *Client) searchURL(phrase, site string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)
	q.Set("q", phrase)
	if site != "" {
		q.Set("siteSearch", site)
		q.Set("siteSearchFilter", "i")
	}
	return c.baseURL + "/customsearch/v1?" + q.Encode()
}

// parseTotal accepts totalResults as a JSON string ("1234") or number.
func parseTotal(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("totalResults %q is not a count", s)
		}
		return n, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err != nil || n < 0 {
		return 0, fmt.Errorf("totalResults %s is not a count", string(raw))
	}
	return n, nil
}

func classify(ctx context.Context, err error) domain.DependencyKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.DependencyTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.DependencyTimeout
	}
	return domain.DependencyNetwork
}

// redact drops the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
