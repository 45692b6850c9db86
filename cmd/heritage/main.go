package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/heritage/internal/config"
	"github.com/kailas-cloud/heritage/internal/db"
	dbRedis "github.com/kailas-cloud/heritage/internal/db/redis"
	"github.com/kailas-cloud/heritage/internal/domain"
	logpkg "github.com/kailas-cloud/heritage/internal/logger"
	"github.com/kailas-cloud/heritage/internal/metrics"
	"github.com/kailas-cloud/heritage/internal/repository/embcache"
	itemrepo "github.com/kailas-cloud/heritage/internal/repository/item"
	chiTransport "github.com/kailas-cloud/heritage/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/heritage/internal/transport/openai"
	"github.com/kailas-cloud/heritage/internal/transport/websearch"
	corpusuc "github.com/kailas-cloud/heritage/internal/usecase/corpus"
	embeddinguc "github.com/kailas-cloud/heritage/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/heritage/internal/usecase/health"
	itemuc "github.com/kailas-cloud/heritage/internal/usecase/item"
	referenceuc "github.com/kailas-cloud/heritage/internal/usecase/reference"
	riskuc "github.com/kailas-cloud/heritage/internal/usecase/risk"
	"github.com/kailas-cloud/heritage/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, zap.String("service", "heritage"))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting heritage API server",
		append(version.Fields(),
			zap.String("env", env),
			zap.Int("http_port", cfg.HTTP.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Strings("db_addrs", cfg.Database.Addrs),
		)...,
	)

	// rueidis speaks RESP to both redis and valkey
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Password:   cfg.Database.Password,
		ClientName: "heritage",
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRiskMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Vectorizer.Provider),
		zap.String("model", cfg.Embedding.Vectorizer.Model),
		zap.Int("dimensions", cfg.Embedding.Vectorizer.Dimensions),
	)

	search, err := websearch.New(websearch.Config{
		BaseURL:   cfg.Reference.BaseURL,
		APIKey:    cfg.Reference.APIKey,
		EngineID:  cfg.Reference.EngineID,
		Timeout:   time.Duration(cfg.Reference.TimeoutSec) * time.Second,
		RateLimit: cfg.Reference.RateLimit,
		Burst:     cfg.Reference.Burst,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create reference lookup", zap.Error(err))
	}

	items := itemrepo.New(store, cfg.Storage.KeyPrefix)
	corpus := corpusuc.New(items, corpusuc.Policy{
		RefreshInterval: time.Duration(cfg.Index.RefreshIntervalSec) * time.Second,
		WriteThreshold:  cfg.Index.WriteThreshold,
	}, logger)

	riskSvc := riskuc.New(
		embedder,
		referenceuc.New(search, cfg.Reference.SinhalaSite),
		corpus,
		cfg.Scoring.Params(),
	)
	itemSvc := itemuc.New(items, riskSvc, corpus)
	healthSvc := healthuc.New(0,
		healthuc.Database(store),
		healthuc.Embedding(newEmbeddingHealthChecker(embedder)),
	)

	server := chiTransport.NewServer(riskSvc, itemSvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys: cfg.Auth.APIKeys,
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.Embedder {
	vec := cfg.Embedding.Vectorizer
	prov := cfg.Embedding.Providers[vec.Provider]

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      vec.Model,
		Dimensions: vec.Dimensions,
		Provider:   vec.Provider,
		Timeout:    time.Duration(prov.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(base, store, embcache.Options{
		KeyPrefix: cfg.Storage.KeyPrefix,
		Model:     vec.Model,
		TTL:       time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
	}, metrics.EmbeddingCacheTotal, logger)

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, vec.Provider, vec.Model, vec.Dimensions, logger,
	)

	// Instruction prefix (outermost, cache key includes instruction)
	if vec.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, vec.Instruction)
	}
	return embedder
}
