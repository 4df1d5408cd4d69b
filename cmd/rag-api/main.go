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

	"github.com/asheesh07/Production-Grade-RAG-System/internal/chunker"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/config"
	dbRedis "github.com/asheesh07/Production-Grade-RAG-System/internal/db/redis"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/domain"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/index"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/loader"
	logpkg "github.com/asheesh07/Production-Grade-RAG-System/internal/logger"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/metrics"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/repository/cache"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/repository/docstore"
	chiTransport "github.com/asheesh07/Production-Grade-RAG-System/internal/transport/chi"
	openaiTransport "github.com/asheesh07/Production-Grade-RAG-System/internal/transport/openai"
	rerankTransport "github.com/asheesh07/Production-Grade-RAG-System/internal/transport/rerank"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/usecase/health"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/usecase/pipeline"
	rerankuc "github.com/asheesh07/Production-Grade-RAG-System/internal/usecase/rerank"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/usecase/retrieve"
	"github.com/asheesh07/Production-Grade-RAG-System/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting RAG API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the cache backend to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterRAGMetrics()

	// Vector index: flat cosine index. With a training threshold the index
	// starts untrained and the pipeline trains it on the first ingest batch.
	var idx *index.Flat
	if cfg.Index.MinTrainVectors > 0 {
		idx = index.NewTrainable(cfg.Embedding.Dimensions, cfg.Index.MinTrainVectors)
	} else {
		idx = index.NewFlat(cfg.Embedding.Dimensions)
	}

	// Embedder chain: provider client wrapped by the content-addressed cache
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	embCache := cache.NewEmbeddingCache(
		store,
		time.Duration(cfg.Cache.EmbeddingTTLSec)*time.Second,
		metrics.EmbeddingCacheTotal,
		logger,
	)
	queryEmbedder := cache.NewCachedEmbedder(baseEmbedder, embCache)
	docEmbedder := cache.NewCachedBatchEmbedder(baseEmbedder, embCache)

	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		Logger:      logger,
	})

	crossEncoder := rerankTransport.NewClient(&rerankTransport.Config{
		BaseURL: cfg.Rerank.BaseURL,
		APIKey:  cfg.Rerank.APIKey,
		Model:   cfg.Rerank.Model,
		Timeout: time.Duration(cfg.Rerank.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	respCache := cache.NewResponseCache(
		store,
		time.Duration(cfg.Cache.ResponseTTLSec)*time.Second,
		metrics.ResponseCacheTotal,
		logger,
	)

	chunks := docstore.New(store)

	// Use case services
	retrieveSvc := retrieve.New(queryEmbedder, idx, chunks, logger)
	rerankSvc := rerankuc.New(crossEncoder)
	pipelineSvc := pipeline.New(
		docEmbedder,
		retrieveSvc,
		rerankSvc,
		generator,
		respCache,
		idx,
		chunks,
		pipeline.Options{
			Chunking: chunker.Config{
				ChunkSize:    cfg.Chunking.ChunkSize,
				ChunkOverlap: cfg.Chunking.ChunkOverlap,
				MinChars:     cfg.Chunking.MinChars,
			},
			TopK:            cfg.Retrieval.TopK,
			TopN:            cfg.Rerank.TopN,
			ScoreThreshold:  cfg.Retrieval.ScoreThreshold,
			MaxContextChars: cfg.Generation.MaxContextChars,
		},
		logger,
	)

	healthSvc := health.New(store, newEmbeddingHealthChecker(baseEmbedder))

	server := chiTransport.NewServer(pipelineSvc, loader.New(logger), healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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
						"code":    "internal_error",
						"message": "internal error",
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
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
