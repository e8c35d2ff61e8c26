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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/foliochat/foliochat/internal/config"
	"github.com/foliochat/foliochat/internal/corpus"
	"github.com/foliochat/foliochat/internal/domain"
	logpkg "github.com/foliochat/foliochat/internal/logger"
	"github.com/foliochat/foliochat/internal/metrics"
	chiTransport "github.com/foliochat/foliochat/internal/transport/chi"
	hfTransport "github.com/foliochat/foliochat/internal/transport/hf"
	openaiTransport "github.com/foliochat/foliochat/internal/transport/openai"
	chatuc "github.com/foliochat/foliochat/internal/usecase/chat"
	healthuc "github.com/foliochat/foliochat/internal/usecase/health"
	"github.com/foliochat/foliochat/internal/version"
)

func main() {
	// .env is developer convenience; absence is not an error.
	_ = godotenv.Load()

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

	logger.Info("Starting foliochat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("provider", cfg.Inference.Provider),
		zap.String("embedding_model", cfg.Inference.EmbeddingModel),
		zap.String("generation_model", cfg.Inference.GenerationModel),
	)

	// Register inference metrics explicitly (no init())
	metrics.RegisterInferenceMetrics()

	docs := corpus.MustLoad()
	logger.Info("Corpus loaded", zap.Int("documents", len(docs)))

	// Build inference providers — composition root
	baseEmbedder, generator := buildInference(cfg.Inference, logger)

	queryEmbedder := withInstruction(baseEmbedder, cfg.Retrieval.QueryInstruction)
	docEmbedder := withInstruction(baseEmbedder, cfg.Retrieval.DocumentInstruction)

	chatSvc := chatuc.New(queryEmbedder, docEmbedder, generator, docs, cfg.Retrieval.TopK, logger)
	healthSvc := healthuc.New(chatSvc, newEmbeddingHealthChecker(baseEmbedder))

	server := chiTransport.NewServer(chatSvc, healthSvc, cfg.Inference.Token, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware)
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

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

// buildInference selects the provider pair from config. Both providers
// satisfy the same domain interfaces so the rest of the wiring is identical.
func buildInference(cfg config.InferenceConfig, logger *zap.Logger) (domain.Embedder, domain.Generator) {
	switch cfg.Provider {
	case "openai":
		embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:  cfg.Token,
			BaseURL: cfg.BaseURL,
			Model:   cfg.EmbeddingModel,
			Logger:  logger,
		})
		generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:      cfg.Token,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.GenerationModel,
			MaxTokens:   cfg.MaxNewTokens,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		return embedder, generator
	default:
		embedder := hfTransport.NewEmbedder(&hfTransport.EmbedderConfig{
			Token:   cfg.Token,
			BaseURL: cfg.BaseURL,
			Model:   cfg.EmbeddingModel,
			Logger:  logger,
		})
		generator := hfTransport.NewGenerator(&hfTransport.GeneratorConfig{
			Token:        cfg.Token,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.GenerationModel,
			MaxNewTokens: cfg.MaxNewTokens,
			Temperature:  cfg.Temperature,
			Logger:       logger,
		})
		return embedder, generator
	}
}

// withInstruction wraps an embedder with an instruction prefix when one is
// configured.
func withInstruction(embedder domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return embedder
	}
	return domain.NewInstructionEmbedder(embedder, instruction)
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
						"error": "Server error",
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
