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

	"github.com/shopgrid/prodsearch/internal/config"
	dbRedis "github.com/shopgrid/prodsearch/internal/db/redis"
	logpkg "github.com/shopgrid/prodsearch/internal/logger"
	"github.com/shopgrid/prodsearch/internal/metrics"
	"github.com/shopgrid/prodsearch/internal/repository/taxcache"
	chiTransport "github.com/shopgrid/prodsearch/internal/transport/chi"
	openaiSuggest "github.com/shopgrid/prodsearch/internal/transport/openai"
	"github.com/shopgrid/prodsearch/internal/transport/woo"
	healthuc "github.com/shopgrid/prodsearch/internal/usecase/health"
	intentuc "github.com/shopgrid/prodsearch/internal/usecase/intent"
	searchuc "github.com/shopgrid/prodsearch/internal/usecase/search"
	"github.com/shopgrid/prodsearch/internal/version"
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

	logger.Info("Starting prodsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_base_url", cfg.Catalog.BaseURL),
		zap.Bool("cache_enabled", cfg.Cache.Enabled()),
	)

	metrics.RegisterSearchMetrics()

	// Catalog gateway
	wooGateway := woo.New(woo.Config{
		BaseURL:        cfg.Catalog.BaseURL,
		ConsumerKey:    cfg.Catalog.ConsumerKey,
		ConsumerSecret: cfg.Catalog.ConsumerSecret,
		Timeout:        time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
		Logger:         logger,
	})

	// Optional taxonomy cache decorator
	var gateway searchuc.CatalogGateway = wooGateway
	var cachePinger healthuc.Pinger
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeoutSec) * time.Second
		if err := store.WaitForReady(context.Background(), readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to taxonomy cache")

		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		gateway = taxcache.New(wooGateway, store, ttl, metrics.TaxonomyCacheTotal, logger)
		cachePinger = store
	}

	// Intent analyzers: the relaxed variant feeds the fallback search, the
	// strict variant backs the standalone /intent endpoint.
	vocab := cfg.BuildVocabulary()
	relaxed := intentuc.NewRelaxedWithMatcher(vocab, cfg.RelaxedMatcher(), logger)
	strict := intentuc.NewStrictWithMatcher(vocab, cfg.StrictMatcher(), logger)

	searchSvc := searchuc.New(gateway, relaxed, logger)
	if cfg.Suggestions.Enabled() {
		searchSvc = searchSvc.WithSuggester(openaiSuggest.NewSuggester(&openaiSuggest.Config{
			APIKey:  cfg.Suggestions.APIKey,
			BaseURL: cfg.Suggestions.BaseURL,
			Model:   cfg.Suggestions.Model,
			Logger:  logger,
		}))
		logger.Info("Suggestion provider enabled", zap.String("model", cfg.Suggestions.Model))
	}

	intentSvc := intentuc.NewService(strict, gateway, logger)
	healthSvc := healthuc.New(wooGateway, cachePinger)

	server := chiTransport.NewServer(searchSvc, intentSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())

	r.Post("/search", server.SearchProducts)
	r.Post("/intent", server.AnalyzeIntent)
	r.Get("/health", server.HealthCheck)
	r.Get("/metrics", server.Metrics)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
