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

	"github.com/recdex/recdex/internal/config"
	logpkg "github.com/recdex/recdex/internal/logger"
	"github.com/recdex/recdex/internal/metrics"
	"github.com/recdex/recdex/internal/repository/cache"
	"github.com/recdex/recdex/internal/repository/opensearch"
	"github.com/recdex/recdex/internal/repository/records"
	chiTransport "github.com/recdex/recdex/internal/transport/chi"
	browseuc "github.com/recdex/recdex/internal/usecase/browse"
	healthuc "github.com/recdex/recdex/internal/usecase/health"
	searchuc "github.com/recdex/recdex/internal/usecase/search"
	"github.com/recdex/recdex/internal/version"

	"github.com/recdex/recdex/internal/domain/search/query"
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

	logger.Info("Starting recdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("opensearch_addrs", cfg.OpenSearch.Addrs),
		zap.String("database_path", cfg.Database.Path),
	)

	searchRepo, err := opensearch.New(opensearch.Config{
		Addrs:    cfg.OpenSearch.Addrs,
		Username: cfg.OpenSearch.Username,
		Password: cfg.OpenSearch.Password,
		Index:    cfg.OpenSearch.Index,
		Timeout:  time.Duration(cfg.OpenSearch.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create search repository", zap.Error(err))
	}

	store, err := records.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open records database", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// The summary cache is optional: a failed connection only costs
	// repeated aggregations, so start without one instead of dying.
	var summaryCache *cache.Cache
	if cfg.Cache.Enabled {
		summaryCache, err = cache.New(cache.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, logger)
		if err != nil {
			logger.Warn("Running without summary cache", zap.Error(err))
			summaryCache = nil
		} else {
			defer summaryCache.Close()
		}
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Create use case services
	tags := query.HighlightTags{
		Pre:  cfg.Search.HighlightPreTag,
		Post: cfg.Search.HighlightPostTag,
	}

	// Pass nil interface (not typed nil pointer!) if the cache is absent.
	var cacheIface searchuc.Cache
	if summaryCache != nil {
		cacheIface = summaryCache
	}
	searchSvc := searchuc.New(searchRepo, cacheIface, tags, logger).
		WithPerPage(cfg.Pagination.SearchPerPage)
	browseSvc := browseuc.New(store).WithPerPage(cfg.Pagination.BrowsePerPage)

	var cachePinger healthuc.CachePinger
	if summaryCache != nil {
		cachePinger = summaryCache
	}
	healthSvc := healthuc.New(searchRepo, store, cachePinger)

	server := chiTransport.NewServer(searchSvc, browseSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes(cfg.Auth.APIKeys))

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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
