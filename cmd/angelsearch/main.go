package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/config"
	"github.com/kailas-cloud/angelsearch/internal/db"
	dbRedis "github.com/kailas-cloud/angelsearch/internal/db/redis"
	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/index"
	logpkg "github.com/kailas-cloud/angelsearch/internal/logger"
	"github.com/kailas-cloud/angelsearch/internal/metrics"
	"github.com/kailas-cloud/angelsearch/internal/repository/embcache"
	"github.com/kailas-cloud/angelsearch/internal/repository/store"
	"github.com/kailas-cloud/angelsearch/internal/transport/httpapi"
	openaiTransport "github.com/kailas-cloud/angelsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/angelsearch/internal/usecase/health"
	rerankuc "github.com/kailas-cloud/angelsearch/internal/usecase/rerank"
	searchuc "github.com/kailas-cloud/angelsearch/internal/usecase/search"
	"github.com/kailas-cloud/angelsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting angelsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("profiles_path", cfg.Profiles.Path),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("rerank_model", cfg.Rerank.Model),
	)

	metrics.RegisterProviderMetrics()

	// Load the profile snapshot. An empty store keeps the process up;
	// search answers 503 until profiles exist and the index is rebuilt.
	profiles := store.Load(cfg.Profiles.Path, logger)

	// Optional embedding cache
	var cacheStore db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Provider clients. A missing credential is a configuration error:
	// surfaced once here, search stays unavailable until restart.
	var (
		queryEmbedder domain.Embedder
		batchEmbedder domain.BatchEmbedder
		oracle        domain.RerankOracle
	)
	if cfg.Embedding.APIKey == "" {
		logger.Warn("Embedding API key not set, search will be unavailable",
			zap.Error(domain.ErrConfiguration))
	} else {
		queryEmbedder, batchEmbedder = buildEmbedders(cfg, cacheStore, logger)
		oracle = openaiTransport.NewReranker(&openaiTransport.RerankerConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Rerank.Model,
			Logger:  logger,
		})
	}

	// Build the vector index before serving queries: the readiness gate is
	// that srv.ListenAndServe only runs after this returns.
	embedTimeout := time.Duration(cfg.Embedding.TimeoutSec) * time.Second
	vecIndex := index.New(queryEmbedder, batchEmbedder, embedTimeout, logger)
	if batchEmbedder != nil && profiles.Count() > 0 {
		texts := make([]string, profiles.Count())
		for i, rec := range profiles.All() {
			texts[i] = rec.Text()
		}
		if err := vecIndex.Build(context.Background(), texts); err != nil {
			logger.Error("Failed to build vector index, search will be unavailable", zap.Error(err))
		}
	}

	reranker := rerankuc.New(oracle, time.Duration(cfg.Rerank.TimeoutSec)*time.Second, logger)
	searchSvc := searchuc.New(profiles, vecIndex, reranker, logger)
	healthSvc := healthuc.New(profiles, vecIndex)

	server := httpapi.NewServer(searchSvc, profiles, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.CORS)
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// buildEmbedders assembles the embedder chain: OpenAI -> Cached (optional).
// The same chain serves both the one-time corpus build and per-query embeds,
// so a rebuild after restart hits the cache instead of the provider.
func buildEmbedders(
	cfg config.Config, cacheStore db.Store, logger *zap.Logger,
) (domain.Embedder, domain.BatchEmbedder) {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	if cacheStore == nil {
		return base, base
	}

	cached := embcache.New(
		base, base, cacheStore,
		time.Duration(cfg.Cache.TTLHours)*time.Hour,
		metrics.EmbeddingCacheTotal, logger,
	)
	return cached, cached
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"detail": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
