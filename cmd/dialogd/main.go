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

	"github.com/nuvet/searchdialog/internal/config"
	dbRedis "github.com/nuvet/searchdialog/internal/db/redis"
	logpkg "github.com/nuvet/searchdialog/internal/logger"
	"github.com/nuvet/searchdialog/internal/metrics"
	"github.com/nuvet/searchdialog/internal/repository/convctx"
	chiTransport "github.com/nuvet/searchdialog/internal/transport/chi"
	openaiAssist "github.com/nuvet/searchdialog/internal/transport/openai"
	comparisonuc "github.com/nuvet/searchdialog/internal/usecase/comparison"
	healthuc "github.com/nuvet/searchdialog/internal/usecase/health"
	mergeuc "github.com/nuvet/searchdialog/internal/usecase/merge"
	modificationuc "github.com/nuvet/searchdialog/internal/usecase/modification"
	normalizeuc "github.com/nuvet/searchdialog/internal/usecase/normalize"
	"github.com/nuvet/searchdialog/internal/usecase/similarity"
	"github.com/nuvet/searchdialog/internal/version"
	"github.com/nuvet/searchdialog/internal/vocabulary"
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

	logger.Info("Starting dialog API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register dialogue metrics explicitly (no init())
	metrics.RegisterTurnMetrics()

	vocab, err := vocabulary.Load(cfg.Vocabulary.Path)
	if err != nil {
		logger.Fatal("Failed to load vocabulary", zap.String("path", cfg.Vocabulary.Path), zap.Error(err))
	}
	logger.Info("Vocabulary loaded",
		zap.String("path", cfg.Vocabulary.Path),
		zap.Int("entity_types", len(vocab.Types())),
	)

	// Pass nil interface (not typed nil pointer!) if the assistant is not configured.
	var assistant mergeuc.Assistant
	var assistantChecker healthuc.AssistantChecker
	if cfg.Assistant.APIKey != "" {
		a := openaiAssist.NewAssistant(&openaiAssist.Config{
			APIKey:      cfg.Assistant.APIKey,
			BaseURL:     cfg.Assistant.BaseURL,
			Model:       cfg.Assistant.Model,
			Temperature: cfg.Assistant.Temperature,
			Logger:      logger,
		})
		assistant = a
		assistantChecker = a
		logger.Info("Assistant configured", zap.String("model", cfg.Assistant.Model))
	}

	// Repositories and use case services
	contextRepo := convctx.New(store, cfg.Storage.KeyPrefix,
		time.Duration(cfg.Conversation.ContextTTLHours)*time.Hour)

	mergeSvc := mergeuc.New(
		contextRepo,
		vocab,
		similarity.NewEngine(vocab, logger),
		normalizeuc.New(logger),
		comparisonuc.New(time.Now, logger),
		modificationuc.New(logger),
		assistant,
		logger,
	)
	healthSvc := healthuc.New(store, assistantChecker)

	// Create chi server
	server := chiTransport.NewServer(mergeSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

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
